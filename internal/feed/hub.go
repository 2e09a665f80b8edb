// Package feed streams session snapshots to observers over websocket.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/duelchess/internal/duel"
	"github.com/park285/duelchess/internal/obslog"
	"github.com/park285/duelchess/pkg/chessdto"
)

// Event is one websocket frame.
type Event struct {
	Type  string             `json:"type"` // "state"
	State *chessdto.Snapshot `json:"state,omitempty"`
}

type Hub struct {
	m            *duel.Manager
	origins      []string
	pingInterval time.Duration
	writeTimeout time.Duration
}

func NewHub(m *duel.Manager, origins []string) *Hub {
	return &Hub{m: m, origins: origins, pingInterval: 30 * time.Second, writeTimeout: 5 * time.Second}
}

// Serve upgrades the request and streams the game until either side closes.
// The current snapshot is sent first; afterwards only newer versions.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, code string) {
	ctx := r.Context()
	rec, err := h.m.Load(ctx, code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, duel.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("feed_accept_error", zap.String("code", code), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// 구독을 먼저 확정한 뒤 현재 상태를 보내야 사이의 갱신이 유실되지 않음
	sub := h.m.Store().Subscribe(ctx, code)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	if latest, err := h.m.Load(ctx, code); err == nil {
		rec = latest
	}

	ctx = conn.CloseRead(ctx)
	last := rec.State.Version
	if err := h.write(ctx, conn, rec.State); err != nil {
		return
	}
	obslog.L().Debug("feed_open", zap.String("code", code))

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			obslog.L().Debug("feed_close", zap.String("code", code))
			return
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case msg, ok := <-msgs:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			var snap chessdto.Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				obslog.L().Warn("feed_decode_error", zap.String("code", code), zap.Error(err))
				continue
			}
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			if err := h.write(ctx, conn, snap); err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, snap chessdto.Snapshot) error {
	wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, Event{Type: "state", State: &snap})
}
