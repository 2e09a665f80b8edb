package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/park285/duelchess/internal/archive"
	"github.com/park285/duelchess/internal/duel"
	"github.com/park285/duelchess/internal/feed"
	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/render"
	"github.com/park285/duelchess/pkg/chessdto"
)

type env struct {
	srv *httptest.Server
	rec *archive.MemoryRecorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb, err := duel.NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	rec := archive.NewMemoryRecorder()
	m := duel.NewManager(rdb, duel.NewStore(rdb, time.Hour), duel.WithRecorder(rec), duel.WithClockSeconds(300))
	s := NewServer(Deps{
		Manager:  m,
		Hub:      feed.NewHub(m, nil),
		Renderer: render.New(32),
		Recorder: rec,
		Catalog:  cat,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &env{srv: srv, rec: rec}
}

func (e *env) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (e *env) start(t *testing.T, code string) {
	t.Helper()
	var created chessdto.SessionResponse
	if st := e.do(t, http.MethodPost, "/sessions", chessdto.CreateRequest{Code: code, PlayerID: "w", Name: "Alice"}, &created); st != http.StatusCreated {
		t.Fatalf("create status = %d", st)
	}
	if created.State.Status != "waiting" || created.Message != "Waiting for an opponent to join "+code+"." {
		t.Fatalf("created = %+v %q", created.State, created.Message)
	}
	var joined chessdto.SessionResponse
	if st := e.do(t, http.MethodPost, "/sessions/"+code+"/join", chessdto.JoinRequest{PlayerID: "b"}, &joined); st != http.StatusOK {
		t.Fatalf("join status = %d", st)
	}
	if joined.State.Players.Black == nil || joined.State.Players.Black.Name == "" {
		t.Fatalf("guest name missing: %+v", joined.State.Players)
	}
}

func TestMoveFlow(t *testing.T) {
	e := newEnv(t)
	e.start(t, "R1")

	var res chessdto.MoveResult
	if st := e.do(t, http.MethodPost, "/sessions/R1/move", chessdto.MoveRequest{PlayerID: "w", From: "e2", To: "e4"}, &res); st != http.StatusOK {
		t.Fatalf("move status = %d", st)
	}
	if res.SAN != "e4" || res.Finished || res.State.CurrentPlayer != "black" {
		t.Fatalf("res = %+v", res)
	}

	var targets chessdto.TargetsResponse
	if st := e.do(t, http.MethodGet, "/sessions/R1/targets?from=g8", nil, &targets); st != http.StatusOK {
		t.Fatalf("targets status = %d", st)
	}
	if diff := cmp.Diff([]string{"f6", "h6"}, targets.Targets); diff != "" {
		t.Fatalf("targets (-want +got):\n%s", diff)
	}

	var got chessdto.SessionResponse
	if st := e.do(t, http.MethodGet, "/sessions/R1", nil, &got); st != http.StatusOK {
		t.Fatalf("get status = %d", st)
	}
	if diff := cmp.Diff([]string{"1. e2-e4"}, got.State.Moves); diff != "" {
		t.Fatalf("moves (-want +got):\n%s", diff)
	}
	if got.Clock != "White 5:00 | Black 5:00" {
		t.Fatalf("clock = %q", got.Clock)
	}
}

func TestErrorMapping(t *testing.T) {
	e := newEnv(t)
	e.start(t, "R2")

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"illegal", http.MethodPost, "/sessions/R2/move", chessdto.MoveRequest{PlayerID: "w", From: "e2", To: "e5"}, http.StatusUnprocessableEntity, chessdto.CodeIllegalMove},
		{"out of turn", http.MethodPost, "/sessions/R2/move", chessdto.MoveRequest{PlayerID: "b", From: "e7", To: "e5"}, http.StatusForbidden, chessdto.CodeInvalidSeat},
		{"stranger", http.MethodPost, "/sessions/R2/resign", chessdto.ResignRequest{PlayerID: "x"}, http.StatusForbidden, chessdto.CodeInvalidSeat},
		{"full", http.MethodPost, "/sessions/R2/join", chessdto.JoinRequest{PlayerID: "c"}, http.StatusConflict, chessdto.CodeNotPermitted},
		{"taken", http.MethodPost, "/sessions", chessdto.CreateRequest{Code: "R2", PlayerID: "z"}, http.StatusConflict, chessdto.CodeCodeTaken},
		{"missing", http.MethodGet, "/sessions/NOPE", nil, http.StatusNotFound, chessdto.CodeNotFound},
		{"bad code", http.MethodPost, "/sessions", chessdto.CreateRequest{Code: "a b", PlayerID: "z"}, http.StatusBadRequest, chessdto.CodeInvalidArgument},
		{"no from", http.MethodGet, "/sessions/R2/targets", nil, http.StatusBadRequest, chessdto.CodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de chessdto.DomainError
			if st := e.do(t, tc.method, tc.path, tc.body, &de); st != tc.status {
				t.Fatalf("status = %d, want %d (%+v)", st, tc.status, de)
			}
			if de.Code != tc.code {
				t.Fatalf("code = %q, want %q", de.Code, tc.code)
			}
		})
	}
}

func TestLobby(t *testing.T) {
	e := newEnv(t)
	var created chessdto.SessionResponse
	if st := e.do(t, http.MethodPost, "/sessions", chessdto.CreateRequest{PlayerID: "w"}, &created); st != http.StatusCreated {
		t.Fatalf("create status = %d", st)
	}
	var lobby chessdto.SessionsResponse
	if st := e.do(t, http.MethodGet, "/lobby", nil, &lobby); st != http.StatusOK {
		t.Fatalf("lobby status = %d", st)
	}
	if len(lobby.Sessions) != 1 || lobby.Sessions[0].State.Code != created.State.Code {
		t.Fatalf("lobby = %+v", lobby.Sessions)
	}
	if st := e.do(t, http.MethodPost, "/sessions/"+created.State.Code+"/join", chessdto.JoinRequest{PlayerID: "b"}, nil); st != http.StatusOK {
		t.Fatalf("join status = %d", st)
	}
	lobby = chessdto.SessionsResponse{}
	if st := e.do(t, http.MethodGet, "/lobby", nil, &lobby); st != http.StatusOK || len(lobby.Sessions) != 0 {
		t.Fatalf("lobby after join = %d %+v", st, lobby.Sessions)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	e := newEnv(t)
	resp, err := e.srv.Client().Post(e.srv.URL+"/sessions", "application/json", strings.NewReader(`{"playerId":"w","colour":"black"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCheckmateArchived(t *testing.T) {
	e := newEnv(t)
	e.start(t, "R3")
	moves := []chessdto.MoveRequest{
		{PlayerID: "w", From: "f2", To: "f3"},
		{PlayerID: "b", From: "e7", To: "e5"},
		{PlayerID: "w", From: "g2", To: "g4"},
		{PlayerID: "b", From: "d8", To: "h4"},
	}
	var res chessdto.MoveResult
	for _, mv := range moves {
		if st := e.do(t, http.MethodPost, "/sessions/R3/move", mv, &res); st != http.StatusOK {
			t.Fatalf("move %s-%s status = %d", mv.From, mv.To, st)
		}
	}
	if !res.Finished || res.SAN != "Qh4#" || res.State.Winner != "black" {
		t.Fatalf("res = %+v", res)
	}
	if !strings.HasPrefix(res.Message, "Checkmate.") {
		t.Fatalf("message = %q", res.Message)
	}

	var recent chessdto.RecentResponse
	if st := e.do(t, http.MethodGet, "/games/recent", nil, &recent); st != http.StatusOK {
		t.Fatalf("recent status = %d", st)
	}
	if len(recent.Games) != 1 || recent.Games[0].Result != "0-1" {
		t.Fatalf("recent = %+v", recent.Games)
	}

	var mine chessdto.SessionsResponse
	if st := e.do(t, http.MethodGet, "/players/w/sessions", nil, &mine); st != http.StatusOK {
		t.Fatalf("player sessions status = %d", st)
	}
	if len(mine.Sessions) != 1 || mine.Sessions[0].State.Code != "R3" {
		t.Fatalf("sessions = %+v", mine.Sessions)
	}
}

func TestPromotionPendingThenChoice(t *testing.T) {
	e := newEnv(t)
	e.start(t, "R4")
	line := []chessdto.MoveRequest{
		{PlayerID: "w", From: "h2", To: "h4"},
		{PlayerID: "b", From: "g7", To: "g5"},
		{PlayerID: "w", From: "h4", To: "g5"},
		{PlayerID: "b", From: "h7", To: "h6"},
		{PlayerID: "w", From: "g5", To: "h6"},
		{PlayerID: "b", From: "f8", To: "g7"},
		{PlayerID: "w", From: "h6", To: "g7"},
		{PlayerID: "b", From: "a7", To: "a6"},
		{PlayerID: "w", From: "g7", To: "h8"},
	}
	var res chessdto.MoveResult
	for _, mv := range line {
		if st := e.do(t, http.MethodPost, "/sessions/R4/move", mv, &res); st != http.StatusOK {
			t.Fatalf("move %s-%s status = %d", mv.From, mv.To, st)
		}
	}
	if res.State.PromotionPending != "h8" || res.SAN != "" {
		t.Fatalf("pending = %+v", res)
	}
	var blocked chessdto.DomainError
	if st := e.do(t, http.MethodPost, "/sessions/R4/move", chessdto.MoveRequest{PlayerID: "w", From: "a2", To: "a3"}, &blocked); st != http.StatusConflict {
		t.Fatalf("move during promotion status = %d", st)
	}
	if st := e.do(t, http.MethodPost, "/sessions/R4/promote", chessdto.PromoteRequest{PlayerID: "w", Piece: "knight"}, &res); st != http.StatusOK {
		t.Fatalf("promote status = %d", st)
	}
	if res.SAN != "gxh8=N" || res.State.CurrentPlayer != "black" {
		t.Fatalf("promoted = %+v", res)
	}
}

func TestBoardPNG(t *testing.T) {
	e := newEnv(t)
	e.start(t, "R5")
	for _, q := range []string{"", "?flip=1", "?viewer=b&from=e7"} {
		resp, err := e.srv.Client().Get(e.srv.URL + "/sessions/R5/board.png" + q)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
			t.Fatalf("%q: status %d type %q", q, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		if !bytes.HasPrefix(body, []byte("\x89PNG")) {
			t.Fatalf("%q: not a png", q)
		}
	}
	resp, err := e.srv.Client().Get(e.srv.URL + "/sessions/NOPE/board.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing board status = %d", resp.StatusCode)
	}
}
