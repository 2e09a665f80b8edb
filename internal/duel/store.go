package duel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/duelchess/internal/session"
	"github.com/park285/duelchess/pkg/chessdto"
)

const defaultTTL = 24 * time.Hour

// Record is the persisted envelope around a session snapshot.
type Record struct {
	GameID    string            `json:"gameId"`
	StartFEN  string            `json:"startFen,omitempty"`
	State     chessdto.Snapshot `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Session decodes the snapshot into a core state.
func (r *Record) Session() (session.GameState, error) {
	return session.FromSnapshot(r.State)
}

// Store owns the Redis key layout.
//
//	duel:game:<code>         JSON Record, TTL
//	duel:active              set of codes whose clocks run
//	duel:lobby               set of codes still waiting for an opponent
//	duel:index:user:<id>     set of codes a participant is seated in
//	duel:events:<code>       pub/sub channel carrying snapshots
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) keyGame(code string) string    { return "duel:game:" + strings.TrimSpace(code) }
func (s *Store) keyActive() string             { return "duel:active" }
func (s *Store) keyLobby() string              { return "duel:lobby" }
func (s *Store) keyUserIdx(user string) string { return "duel:index:user:" + strings.TrimSpace(user) }
func (s *Store) keyEvents(code string) string  { return "duel:events:" + strings.TrimSpace(code) }

// Channel is the pub/sub channel for a game.
func (s *Store) Channel(code string) string { return s.keyEvents(code) }

// Insert writes a new record; it fails with ErrCodeTaken when the code is in use.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.keyGame(rec.State.Code), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeTaken
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.index(ctx, pipe, rec)
		return nil
	})
	return err
}

func (s *Store) Load(ctx context.Context, code string) (*Record, error) {
	return s.load(ctx, s.rdb, code)
}

func (s *Store) load(ctx context.Context, c getter, code string) (*Record, error) {
	raw, err := c.Get(ctx, s.keyGame(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", code, err)
	}
	return &rec, nil
}

// queue stages the record write and index upkeep inside a MULTI block.
func (s *Store) queue(ctx context.Context, pipe redis.Pipeliner, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe.Set(ctx, s.keyGame(rec.State.Code), raw, s.ttl)
	s.index(ctx, pipe, rec)
	return nil
}

// index keeps the active, lobby and per-user sets in line with rec.
func (s *Store) index(ctx context.Context, pipe redis.Pipeliner, rec *Record) {
	code := rec.State.Code
	if rec.State.Status == string(session.StatusActive) {
		pipe.SAdd(ctx, s.keyActive(), code)
	} else {
		pipe.SRem(ctx, s.keyActive(), code)
	}
	if rec.State.Status == string(session.StatusWaiting) {
		pipe.SAdd(ctx, s.keyLobby(), code)
		pipe.Expire(ctx, s.keyLobby(), s.ttl)
	} else {
		pipe.SRem(ctx, s.keyLobby(), code)
	}
	for _, p := range []*chessdto.Player{rec.State.Players.White, rec.State.Players.Black} {
		if p == nil || strings.TrimSpace(p.ID) == "" {
			continue
		}
		pipe.SAdd(ctx, s.keyUserIdx(p.ID), code)
		pipe.Expire(ctx, s.keyUserIdx(p.ID), s.ttl)
	}
}

// ActiveCodes lists games with running clocks.
func (s *Store) ActiveCodes(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyActive()).Result()
}

func (s *Store) Deactivate(ctx context.Context, code string) error {
	return s.rdb.SRem(ctx, s.keyActive(), code).Err()
}

// LobbyCodes lists games waiting for a second player.
func (s *Store) LobbyCodes(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyLobby()).Result()
}

func (s *Store) RemoveLobby(ctx context.Context, code string) error {
	return s.rdb.SRem(ctx, s.keyLobby(), code).Err()
}

// CodesByUser lists games a participant is seated in.
func (s *Store) CodesByUser(ctx context.Context, userID string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyUserIdx(userID)).Result()
}

func (s *Store) Publish(ctx context.Context, snap chessdto.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.keyEvents(snap.Code), raw).Err()
}

// Subscribe opens a subscription on the game's event channel.
func (s *Store) Subscribe(ctx context.Context, code string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, s.keyEvents(code))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}
