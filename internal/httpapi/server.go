// Package httpapi exposes duel sessions over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"go.uber.org/zap"

	"github.com/park285/duelchess/internal/archive"
	"github.com/park285/duelchess/internal/duel"
	"github.com/park285/duelchess/internal/feed"
	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/notation"
	"github.com/park285/duelchess/internal/obslog"
	"github.com/park285/duelchess/internal/render"
	"github.com/park285/duelchess/internal/session"
	"github.com/park285/duelchess/pkg/chessdto"
)

const (
	maxJSONBodyBytes int64 = 1 << 16
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// Deps are the collaborators a Server routes to. Manager is required.
type Deps struct {
	Manager      *duel.Manager
	Hub          *feed.Hub
	Renderer     *render.Renderer
	Recorder     archive.Recorder
	Catalog      *msgcat.Catalog
	HistoryLimit int
}

type Server struct {
	deps Deps

	srvMu sync.Mutex
	srv   *http.Server
}

func NewServer(deps Deps) *Server {
	if deps.Renderer == nil {
		deps.Renderer = render.New(64)
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 20
	}
	return &Server{deps: deps}
}

// Listen serves until Close is called.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	obslog.L().Info("http_listen", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the listener down gracefully. Websocket streams end when their
// request contexts are cancelled.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.withJSON(s.handleCreate))
	mux.HandleFunc("GET /sessions/{code}", s.withJSON(s.handleGet))
	mux.HandleFunc("POST /sessions/{code}/join", s.withJSON(s.handleJoin))
	mux.HandleFunc("POST /sessions/{code}/move", s.withJSON(s.handleMove))
	mux.HandleFunc("POST /sessions/{code}/promote", s.withJSON(s.handlePromote))
	mux.HandleFunc("POST /sessions/{code}/resign", s.withJSON(s.handleResign))
	mux.HandleFunc("GET /sessions/{code}/targets", s.withJSON(s.handleTargets))
	mux.HandleFunc("GET /sessions/{code}/board.png", s.handleBoard)
	mux.HandleFunc("GET /sessions/{code}/ws", s.handleWatch)
	mux.HandleFunc("GET /lobby", s.withJSON(s.handleLobby))
	mux.HandleFunc("GET /players/{id}/sessions", s.withJSON(s.handlePlayerSessions))
	mux.HandleFunc("GET /games/recent", s.withJSON(s.handleRecent))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", apiCSP)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return chessdto.DomainError{Code: chessdto.CodeInvalidArgument, Message: "request body too large"}
		}
		return chessdto.DomainError{Code: chessdto.CodeInvalidArgument, Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// writeError renders any failure as a DomainError body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de := duel.AsDomainError(err)
	status := statusFor(de.Code)
	if status >= http.StatusInternalServerError {
		obslog.L().Error("http_error", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		obslog.L().Debug("http_reject", zap.String("path", r.URL.Path), zap.String("code", de.Code), zap.Error(err))
	}
	writeJSON(w, status, de)
}

func statusFor(code string) int {
	switch code {
	case chessdto.CodeIllegalMove:
		return http.StatusUnprocessableEntity
	case chessdto.CodeInvalidSeat:
		return http.StatusForbidden
	case chessdto.CodeNotPermitted, chessdto.CodeCodeTaken, chessdto.CodeConflict:
		return http.StatusConflict
	case chessdto.CodeNotFound:
		return http.StatusNotFound
	case chessdto.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) view(rec *duel.Record) chessdto.SessionResponse {
	snap := rec.State
	return chessdto.SessionResponse{
		State:   &snap,
		Message: s.deps.Catalog.StatusLine(snap),
		Clock:   s.deps.Catalog.ClockLine(snap),
	}
}

func guestName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return petname.Generate(2, "-")
}

// ---- sessions ----

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req chessdto.CreateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	host := session.Identity{ID: strings.TrimSpace(req.PlayerID), Name: guestName(req.Name)}
	rec, err := s.deps.Manager.Create(r.Context(), req.Code, host, session.Options{ClockSeconds: req.ClockSeconds})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(rec))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Manager.Load(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(rec))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req chessdto.JoinRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := session.Identity{ID: strings.TrimSpace(req.PlayerID), Name: guestName(req.Name)}
	rec, err := s.deps.Manager.Join(r.Context(), r.PathValue("code"), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(rec))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req chessdto.MoveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.deps.Manager.Move(r.Context(), r.PathValue("code"), req.PlayerID, req.From, req.To, req.Promotion)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.moveResult(rec))
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	var req chessdto.PromoteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.deps.Manager.Promote(r.Context(), r.PathValue("code"), req.PlayerID, req.Piece)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.moveResult(rec))
}

func (s *Server) handleResign(w http.ResponseWriter, r *http.Request) {
	var req chessdto.ResignRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.deps.Manager.Resign(r.Context(), r.PathValue("code"), req.PlayerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(rec))
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	if from == "" {
		s.writeError(w, r, chessdto.DomainError{Code: chessdto.CodeInvalidArgument, Message: "from is required"})
		return
	}
	targets, err := s.deps.Manager.Targets(r.Context(), r.PathValue("code"), from)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.TargetsResponse{From: from, Targets: targets})
}

func (s *Server) handlePlayerSessions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.Manager.GamesFor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views(recs))
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	recs, err := s.deps.Manager.Lobby(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views(recs))
}

func (s *Server) views(recs []*duel.Record) chessdto.SessionsResponse {
	out := chessdto.SessionsResponse{Sessions: make([]chessdto.SessionResponse, 0, len(recs))}
	for _, rec := range recs {
		out.Sessions = append(out.Sessions, s.view(rec))
	}
	return out
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	out := chessdto.RecentResponse{Games: []chessdto.FinishedGame{}}
	if s.deps.Recorder == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}
	games, err := s.deps.Recorder.Recent(r.Context(), s.deps.HistoryLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if games != nil {
		out.Games = games
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		http.Error(w, "feed disabled", http.StatusNotImplemented)
		return
	}
	s.deps.Hub.Serve(w, r, r.PathValue("code"))
}

// moveResult adds the SAN of the last completed move. Replay failures only
// drop the SAN.
func (s *Server) moveResult(rec *duel.Record) chessdto.MoveResult {
	snap := rec.State
	res := chessdto.MoveResult{
		State:    &snap,
		Finished: session.Status(snap.Status).IsTerminal(),
		Message:  s.deps.Catalog.StatusLine(snap),
	}
	if snap.PromotionPending != "" || len(snap.MoveLog) == 0 {
		return res
	}
	st, err := rec.Session()
	if err != nil {
		return res
	}
	uci := make([]string, 0, len(st.MoveLog))
	for _, mv := range st.MoveLog {
		uci = append(uci, mv.UCI())
	}
	line, err := notation.Replay(rec.StartFEN, uci)
	if err != nil {
		obslog.L().Warn("san_replay_error", zap.String("code", snap.Code), zap.Error(err))
		return res
	}
	if n := len(line.SAN); n > 0 {
		res.SAN = line.SAN[n-1]
	}
	return res
}
