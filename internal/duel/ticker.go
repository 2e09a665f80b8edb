package duel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/duelchess/internal/obslog"
	"github.com/park285/duelchess/internal/session"
)

const tickerLockKey = "duel:ticker:lock"

// Ticker drives the game clocks. Elapsed wall time is charged in whole
// seconds; the remainder carries into the next step. A Redis lease keeps a
// single ticking instance per deployment.
type Ticker struct {
	m        *Manager
	interval time.Duration
	owner    string

	last  time.Time
	carry time.Duration
}

func NewTicker(m *Manager, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{m: m, interval: interval, owner: uuid.NewString()}
}

// Run blocks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	t.last = t.m.now()
	obslog.L().Info("duel_ticker_start", zap.Duration("interval", t.interval), zap.String("owner", t.owner))
	for {
		select {
		case <-ctx.Done():
			t.release(context.WithoutCancel(ctx))
			obslog.L().Info("duel_ticker_stop", zap.String("owner", t.owner))
			return
		case <-tk.C:
			t.Step(ctx, t.m.now())
		}
	}
}

// Step charges the time since the previous step to every active game and
// returns the whole seconds charged.
func (t *Ticker) Step(ctx context.Context, now time.Time) int {
	if t.last.IsZero() {
		t.last = now
		return 0
	}
	elapsed := now.Sub(t.last) + t.carry
	t.last = now
	if elapsed < 0 {
		elapsed = 0
	}
	secs := int(elapsed / time.Second)
	t.carry = elapsed - time.Duration(secs)*time.Second
	if secs == 0 {
		return 0
	}
	if !t.acquire(ctx) {
		return 0
	}
	codes, err := t.m.store.ActiveCodes(ctx)
	if err != nil {
		obslog.L().Warn("duel_tick_list_error", zap.Error(err))
		return 0
	}
	for _, code := range codes {
		_, err := t.m.Tick(ctx, code, secs)
		switch {
		case err == nil, errors.Is(err, session.ErrActionNotPermitted), errors.Is(err, ErrNotFound):
		case errors.Is(err, ErrConflict):
			// 수 제출과 겹친 경우. 다음 주기에 다시 차감되지 않으므로 로그만 남김
			obslog.L().Debug("duel_tick_conflict", zap.String("code", code))
		default:
			obslog.L().Warn("duel_tick_error", zap.String("code", code), zap.Error(err))
		}
	}
	return secs
}

func (t *Ticker) acquire(ctx context.Context) bool {
	rdb := t.m.rdb
	lease := 3 * t.interval
	ok, err := rdb.SetNX(ctx, tickerLockKey, t.owner, lease).Result()
	if err != nil {
		obslog.L().Warn("duel_ticker_lock_error", zap.Error(err))
		return false
	}
	if ok {
		return true
	}
	holder, err := rdb.Get(ctx, tickerLockKey).Result()
	if err != nil || holder != t.owner {
		return false
	}
	_ = rdb.PExpire(ctx, tickerLockKey, lease).Err()
	return true
}

func (t *Ticker) release(ctx context.Context) {
	holder, err := t.m.rdb.Get(ctx, tickerLockKey).Result()
	if err == nil && holder == t.owner {
		_ = t.m.rdb.Del(ctx, tickerLockKey).Err()
	}
}
