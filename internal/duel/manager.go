package duel

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/duelchess/internal/archive"
	"github.com/park285/duelchess/internal/obslog"
	"github.com/park285/duelchess/internal/rules"
	"github.com/park285/duelchess/internal/session"
	"github.com/park285/duelchess/pkg/chessdto"
)

// Publisher receives every committed snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap chessdto.Snapshot) error
}

// Manager serializes session transitions through Redis optimistic
// transactions: each operation loads the record under WATCH, applies one
// core transition and commits, so at most one write per version lands.
type Manager struct {
	rdb        *redis.Client
	store      *Store
	recorder   archive.Recorder
	publishers []Publisher

	clockSeconds   int
	maxRetries     int
	publishTimeout time.Duration
	now            func() time.Time
}

type Option func(*Manager)

func WithRecorder(r archive.Recorder) Option { return func(m *Manager) { m.recorder = r } }

func WithPublisher(p Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
}

// WithClockSeconds sets the default per-side budget for new games.
func WithClockSeconds(n int) Option { return func(m *Manager) { m.clockSeconds = n } }

func WithNow(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithRetries(n int) Option { return func(m *Manager) { m.maxRetries = n } }

func NewManager(rdb *redis.Client, store *Store, opts ...Option) *Manager {
	m := &Manager{
		rdb:            rdb,
		store:          store,
		clockSeconds:   session.DefaultClockSeconds,
		maxRetries:     3,
		publishTimeout: 3 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewRedisClient parses REDIS_URL and checks connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for duel store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (m *Manager) Store() *Store { return m.store }

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// Create opens a game with host as White. An empty code is generated.
func (m *Manager) Create(ctx context.Context, code string, host session.Identity, opts session.Options) (*Record, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	code = strings.TrimSpace(code)
	generated := code == ""
	if opts.ClockSeconds <= 0 {
		opts.ClockSeconds = m.clockSeconds
	}
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		if generated {
			c, err := codeGen()
			if err != nil {
				return nil, err
			}
			code = c
		} else if !codePattern.MatchString(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
		st, err := session.Create(code, host, opts)
		if err != nil {
			return nil, err
		}
		now := m.now()
		rec := &Record{GameID: uuid.NewString(), State: st.Snapshot(), CreatedAt: now, UpdatedAt: now}
		if opts.Position != nil {
			rec.StartFEN = opts.Position.FEN()
		}
		err = m.store.Insert(ctx, rec)
		if errors.Is(err, ErrCodeTaken) && generated {
			continue
		}
		if err != nil {
			return nil, err
		}
		obslog.L().Info("duel_create",
			zap.String("code", code),
			zap.String("game_id", rec.GameID),
			zap.String("white_id", host.ID),
			zap.Int("clock_sec", opts.ClockSeconds),
		)
		m.broadcast(ctx, rec)
		return rec, nil
	}
	return nil, ErrCodeTaken
}

func (m *Manager) Load(ctx context.Context, code string) (*Record, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	return m.store.Load(ctx, code)
}

func (m *Manager) Join(ctx context.Context, code string, id session.Identity) (*Record, error) {
	return m.update(ctx, code, "join", func(st session.GameState) (session.GameState, error) {
		return st.Join(id)
	})
}

// Move submits from-to for playerID. When promotion is set and the move
// reaches the last rank, the choice is applied in the same transaction.
func (m *Manager) Move(ctx context.Context, code, playerID, from, to, promotion string) (*Record, error) {
	return m.update(ctx, code, "move", func(st session.GameState) (session.GameState, error) {
		fromSq, toSq, err := parseCoords(from, to)
		if err != nil {
			return st, err
		}
		next, err := st.SubmitMove(playerID, fromSq, toSq)
		if err != nil || !next.HasPendingPromotion() || strings.TrimSpace(promotion) == "" {
			return next, err
		}
		kind, err := parseKind(promotion)
		if err != nil {
			return st, err
		}
		return next.SubmitPromotionChoice(playerID, kind)
	})
}

func (m *Manager) Promote(ctx context.Context, code, playerID, piece string) (*Record, error) {
	return m.update(ctx, code, "promote", func(st session.GameState) (session.GameState, error) {
		kind, err := parseKind(piece)
		if err != nil {
			return st, err
		}
		return st.SubmitPromotionChoice(playerID, kind)
	})
}

func (m *Manager) Resign(ctx context.Context, code, playerID string) (*Record, error) {
	return m.update(ctx, code, "resign", func(st session.GameState) (session.GameState, error) {
		return st.ResignAs(playerID)
	})
}

// Tick charges elapsed seconds to the side to move.
func (m *Manager) Tick(ctx context.Context, code string, elapsed int) (*Record, error) {
	rec, err := m.update(ctx, code, "tick", func(st session.GameState) (session.GameState, error) {
		return st.AdvanceClock(elapsed)
	})
	if errors.Is(err, session.ErrActionNotPermitted) || errors.Is(err, ErrNotFound) {
		_ = m.store.Deactivate(ctx, code)
	}
	return rec, err
}

// Targets lists legal destinations from a square for the side to move.
func (m *Manager) Targets(ctx context.Context, code, from string) ([]string, error) {
	rec, err := m.Load(ctx, code)
	if err != nil {
		return nil, err
	}
	st, err := rec.Session()
	if err != nil {
		return nil, err
	}
	sq, err := rules.ParseSquare(from)
	if err != nil {
		return nil, &session.Error{Kind: session.KindIllegalMove, Reason: rules.ReasonOffBoard, Msg: err.Error()}
	}
	out := []string{}
	if st.Status != session.StatusActive || st.HasPendingPromotion() {
		return out, nil
	}
	for _, t := range rules.LegalTargets(st.Position, sq) {
		out = append(out, t.String())
	}
	return out, nil
}

// GamesFor returns the games playerID is seated in, most recent first.
func (m *Manager) GamesFor(ctx context.Context, playerID string) ([]*Record, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, nil
	}
	codes, err := m.store.CodesByUser(ctx, playerID)
	if err != nil {
		return nil, err
	}
	var list []*Record
	for _, c := range codes {
		rec, err := m.store.Load(ctx, c)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

// Lobby returns games still waiting for an opponent, newest first. Expired
// or already started entries are dropped from the index on the way.
func (m *Manager) Lobby(ctx context.Context) ([]*Record, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	codes, err := m.store.LobbyCodes(ctx)
	if err != nil {
		return nil, err
	}
	var list []*Record
	for _, c := range codes {
		rec, err := m.store.Load(ctx, c)
		if errors.Is(err, ErrNotFound) {
			_ = m.store.RemoveLobby(ctx, c)
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.State.Status != string(session.StatusWaiting) {
			_ = m.store.RemoveLobby(ctx, c)
			continue
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// update runs fn against the current state inside WATCH/MULTI, retrying
// when another writer commits first.
func (m *Manager) update(ctx context.Context, code, op string, fn func(session.GameState) (session.GameState, error)) (*Record, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	key := m.store.keyGame(code)
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		var (
			rec     *Record
			before  session.GameState
			after   session.GameState
			changed bool
		)
		err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := m.store.load(ctx, tx, code)
			if err != nil {
				return err
			}
			st, err := cur.Session()
			if err != nil {
				return err
			}
			next, err := fn(st)
			if err != nil {
				return err
			}
			rec, before, after = cur, st, next
			if next.Version == st.Version {
				return nil
			}
			changed = true
			rec.State = next.Snapshot()
			rec.UpdatedAt = m.now()
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return m.store.queue(ctx, pipe, rec)
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			obslog.L().Debug("duel_conflict", zap.String("code", code), zap.String("op", op), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			if op != "tick" {
				obslog.L().Info("duel_rejected", zap.String("code", code), zap.String("op", op), zap.Error(err))
			}
			return nil, err
		}
		if changed {
			m.afterCommit(ctx, op, rec, before, after)
		}
		return rec, nil
	}
	obslog.L().Warn("duel_conflict_exhausted", zap.String("code", code), zap.String("op", op))
	return nil, ErrConflict
}

func (m *Manager) afterCommit(ctx context.Context, op string, rec *Record, before, after session.GameState) {
	if op != "tick" {
		obslog.L().Info("duel_"+op,
			zap.String("code", rec.State.Code),
			zap.Int64("version", rec.State.Version),
			zap.String("status", rec.State.Status),
			zap.String("turn", rec.State.CurrentPlayer),
			zap.Int("plies", len(after.MoveLog)),
		)
	}
	m.broadcast(ctx, rec)
	if !before.Status.IsTerminal() && after.Status.IsTerminal() {
		m.record(ctx, rec, after)
	}
}

func (m *Manager) broadcast(ctx context.Context, rec *Record) {
	if err := m.store.Publish(ctx, rec.State); err != nil {
		obslog.L().Warn("duel_publish_error", zap.String("code", rec.State.Code), zap.Error(err))
	}
	if len(m.publishers) == 0 {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.publishTimeout)
	defer cancel()
	for _, p := range m.publishers {
		if err := p.Publish(pctx, rec.State); err != nil {
			obslog.L().Warn("duel_mirror_error", zap.String("code", rec.State.Code), zap.Error(err))
		}
	}
}

func (m *Manager) record(ctx context.Context, rec *Record, st session.GameState) {
	if m.recorder == nil {
		return
	}
	res := ResultOf(rec, st)
	if err := m.recorder.SaveResult(context.WithoutCancel(ctx), res); err != nil {
		obslog.L().Error("duel_result_persist_error", zap.String("game_id", rec.GameID), zap.Error(err))
		return
	}
	obslog.L().Info("duel_result_persist",
		zap.String("game_id", rec.GameID),
		zap.String("status", res.Status),
		zap.String("winner", res.Winner),
	)
}

// ResultOf builds the archive entry for a finished record.
func ResultOf(rec *Record, st session.GameState) archive.Result {
	res := archive.Result{
		GameID:    rec.GameID,
		Code:      st.Code,
		Status:    string(st.Status),
		StartFEN:  rec.StartFEN,
		FinalFEN:  st.Position.FEN(),
		StartedAt: rec.CreatedAt,
		EndedAt:   rec.UpdatedAt,
		WhiteLeft: st.Clocks.White,
		BlackLeft: st.Clocks.Black,
	}
	if st.Seats.White != nil {
		res.White = chessdto.Player{ID: st.Seats.White.ID, Name: st.Seats.White.Name}
	}
	if st.Seats.Black != nil {
		res.Black = chessdto.Player{ID: st.Seats.Black.ID, Name: st.Seats.Black.Name}
	}
	if st.Winner != nil {
		res.Winner = st.Winner.String()
	}
	for _, mv := range st.MoveLog {
		res.MovesUCI = append(res.MovesUCI, mv.UCI())
		res.Moves = append(res.Moves, mv.String())
	}
	return res
}

func parseCoords(from, to string) (rules.Square, rules.Square, error) {
	f, err := rules.ParseSquare(from)
	if err != nil {
		return rules.NoSquare, rules.NoSquare, &session.Error{Kind: session.KindIllegalMove, Reason: rules.ReasonOffBoard, Msg: err.Error()}
	}
	t, err := rules.ParseSquare(to)
	if err != nil {
		return rules.NoSquare, rules.NoSquare, &session.Error{Kind: session.KindIllegalMove, Reason: rules.ReasonOffBoard, Msg: err.Error()}
	}
	return f, t, nil
}

func parseKind(s string) (rules.Kind, error) {
	k, err := rules.ParseKind(s)
	if err != nil || !k.Promotable() {
		return rules.NoKind, &session.Error{Kind: session.KindIllegalMove, Msg: fmt.Sprintf("invalid promotion piece %q", s)}
	}
	return k, nil
}

// codeGen returns 6 upper alnum characters.
func codeGen() (string, error) {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}
