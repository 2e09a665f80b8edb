// Package duelbuilder wires the duel service from configuration.
package duelbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/duelchess/internal/archive"
	"github.com/park285/duelchess/internal/config"
	"github.com/park285/duelchess/internal/duel"
	"github.com/park285/duelchess/internal/feed"
	"github.com/park285/duelchess/internal/httpapi"
	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/realtime"
	"github.com/park285/duelchess/internal/render"
)

type Deps struct {
	Redis    *redis.Client
	Manager  *duel.Manager
	Ticker   *duel.Ticker
	Recorder archive.Recorder
	Mirror   *realtime.Client
	Hub      *feed.Hub
	Catalog  *msgcat.Catalog
	Server   *httpapi.Server

	closers []func() error
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb, err := duel.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	d := &Deps{Redis: rdb}
	d.closers = append(d.closers, rdb.Close)

	// Recorder: Postgres when configured, otherwise in-process.
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := archive.NewPostgresRecorder(cfg.DatabaseURL)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("init archive: %w", err)
		}
		d.Recorder = pg
		d.closers = append(d.closers, pg.Close)
	} else {
		logger.Warn("archive_memory_fallback", zap.String("reason", "DATABASE_URL empty"))
		d.Recorder = archive.NewMemoryRecorder()
	}

	opts := []duel.Option{
		duel.WithRecorder(d.Recorder),
		duel.WithClockSeconds(cfg.ClockInitialSec),
	}
	if cfg.RealtimeBaseURL != "" {
		d.Mirror = realtime.NewClient(cfg.RealtimeBaseURL, realtime.WithAuthToken(cfg.RealtimeAuthToken))
		opts = append(opts, duel.WithPublisher(d.Mirror))
	}
	d.Manager = duel.NewManager(rdb, duel.NewStore(rdb, cfg.SessionTTL()), opts...)
	d.Ticker = duel.NewTicker(d.Manager, cfg.TickInterval())

	d.Catalog, err = msgcat.New(cfg.MessagesDir)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("init messages: %w", err)
	}
	d.Hub = feed.NewHub(d.Manager, cfg.AllowedOrigins)
	d.Server = httpapi.NewServer(httpapi.Deps{
		Manager:      d.Manager,
		Hub:          d.Hub,
		Renderer:     render.New(64),
		Recorder:     d.Recorder,
		Catalog:      d.Catalog,
		HistoryLimit: cfg.HistoryLimit,
	})

	logger.Info("duel_deps_ready",
		zap.Bool("postgres", cfg.DatabaseURL != ""),
		zap.Bool("mirror", d.Mirror != nil),
		zap.Duration("session_ttl", cfg.SessionTTL()),
		zap.Duration("tick", cfg.TickInterval()),
	)
	return d, nil
}

// Close releases connections in reverse order of acquisition.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
