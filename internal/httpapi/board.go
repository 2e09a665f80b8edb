package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/park285/duelchess/internal/render"
	"github.com/park285/duelchess/internal/rules"
	"github.com/park285/duelchess/internal/session"
	"github.com/park285/duelchess/pkg/chessdto"
)

// handleBoard renders the position. Query: flip=1, viewer=<id> (flips when
// the viewer plays Black), from=<square> to dot its legal targets.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Manager.Load(r.Context(), r.PathValue("code"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeError(w, r, err)
		return
	}
	st, err := rec.Session()
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := boardOptions(st)
	if flip, _ := strconv.ParseBool(q.Get("flip")); flip {
		opts.Flip = true
	}
	if viewer := strings.TrimSpace(q.Get("viewer")); viewer != "" {
		if c, ok := st.SeatOf(viewer); ok && c == rules.Black {
			opts.Flip = true
		}
	}
	if from := strings.TrimSpace(q.Get("from")); from != "" {
		if sq, err := rules.ParseSquare(from); err == nil && st.Status == session.StatusActive && !st.HasPendingPromotion() {
			opts.Targets = rules.LegalTargets(st.Position, sq)
		}
	}
	opts.Title = s.deps.Catalog.StatusLine(rec.State)

	png, err := s.deps.Renderer.PNG(r.Context(), st.Position.Board, opts)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeError(w, r, chessdto.DomainError{Code: chessdto.CodeInternal, Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// boardOptions marks the last move, or the pawn awaiting promotion, and a
// checked king.
func boardOptions(st session.GameState) render.Options {
	var opts render.Options
	switch {
	case st.HasPendingPromotion():
		opts.Highlight = &render.Highlight{From: st.PendingFrom, To: st.PromotionPending}
	case len(st.MoveLog) > 0:
		last := st.MoveLog[len(st.MoveLog)-1]
		opts.Highlight = &render.Highlight{From: last.From, To: last.To}
	}
	if st.IsCheck {
		side := st.Position.SideToMove
		opts.Check = &side
	}
	return opts
}
