package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/duelchess/internal/rules"
)

var (
	alice = Identity{ID: "u-alice", Name: "Alice"}
	bob   = Identity{ID: "u-bob", Name: "Bob"}
)

func sq(s string) rules.Square { return rules.MustSquare(s) }

func activeGame(t *testing.T, opts Options) GameState {
	t.Helper()
	g, err := Create("ROOM1", alice, opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	g, err = g.Join(bob)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	return g
}

func play(t *testing.T, g GameState, moves ...string) GameState {
	t.Helper()
	for _, m := range moves {
		id := g.Seats.White.ID
		if g.Position.SideToMove == rules.Black {
			id = g.Seats.Black.ID
		}
		next, err := g.SubmitMove(id, sq(m[:2]), sq(m[3:]))
		if err != nil {
			t.Fatalf("move %s: %v", m, err)
		}
		g = next
	}
	return g
}

func TestCreateWaitsForSecondSeat(t *testing.T) {
	g, err := Create("ROOM1", alice, Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != StatusWaiting {
		t.Fatalf("status = %s, want waiting", g.Status)
	}
	if g.Seats.White == nil || g.Seats.White.ID != alice.ID || g.Seats.Black != nil {
		t.Fatalf("seats = %+v", g.Seats)
	}
	if g.Clocks != (Clocks{White: DefaultClockSeconds, Black: DefaultClockSeconds}) {
		t.Fatalf("clocks = %+v", g.Clocks)
	}
	if _, err := Create("ROOM1", Identity{}, Options{}); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("empty identity err = %v", err)
	}
}

func TestSubmitMoveWhileWaitingIsRejected(t *testing.T) {
	g, _ := Create("ROOM1", alice, Options{ClockSeconds: 300})
	before := g
	next, err := g.SubmitMove(alice.ID, sq("e2"), sq("e4"))
	if !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("err = %v, want action not permitted", err)
	}
	if diff := cmp.Diff(before, next); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, g); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestSeatBinding(t *testing.T) {
	g, _ := Create("ROOM1", alice, Options{})
	if _, err := g.BindSeat(rules.White, bob); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("taken seat err = %v", err)
	}
	if _, err := g.BindSeat(rules.Black, alice); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("double seat err = %v", err)
	}
	g, err := g.BindSeat(rules.Black, bob)
	if err != nil {
		t.Fatalf("BindSeat: %v", err)
	}
	if g.Status != StatusActive {
		t.Fatalf("status = %s, want active", g.Status)
	}
	carol := Identity{ID: "u-carol"}
	if _, err := g.Join(carol); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("join full game err = %v", err)
	}
	if c, ok := g.SeatOf(bob.ID); !ok || c != rules.Black {
		t.Fatalf("SeatOf(bob) = %v, %v", c, ok)
	}
	if _, ok := g.SeatOf(carol.ID); ok {
		t.Fatalf("spectator reported as seated")
	}
}

func TestTurnOwnership(t *testing.T) {
	g := activeGame(t, Options{})
	if _, err := g.SubmitMove(bob.ID, sq("e7"), sq("e5")); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("out of turn err = %v", err)
	}
	if _, err := g.SubmitMove("stranger", sq("e2"), sq("e4")); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("spectator err = %v", err)
	}
	_, err := g.SubmitMove(alice.ID, sq("e2"), sq("e5"))
	var se *Error
	if !errors.As(err, &se) || se.Kind != KindIllegalMove || se.Reason != rules.ReasonBadPattern {
		t.Fatalf("illegal err = %v", err)
	}
	if !g.CanMove(alice.ID) || g.CanMove(bob.ID) {
		t.Fatalf("CanMove mismatch")
	}
}

func TestMoveLogAndPairs(t *testing.T) {
	g := activeGame(t, Options{})
	g = play(t, g, "e2-e4", "e7-e5", "g1-f3")
	want := []MoveRecord{
		{From: sq("e2"), To: sq("e4")},
		{From: sq("e7"), To: sq("e5")},
		{From: sq("g1"), To: sq("f3")},
	}
	if diff := cmp.Diff(want, g.MoveLog); diff != "" {
		t.Fatalf("log (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1. e2-e4 e7-e5", "2. g1-f3"}, MovePairs(g.MoveLog)); diff != "" {
		t.Fatalf("pairs (-want +got):\n%s", diff)
	}
	if g.Version != 5 {
		t.Fatalf("version = %d, want 5", g.Version)
	}
}

func TestFoolsMate(t *testing.T) {
	g := activeGame(t, Options{})
	g = play(t, g, "f2-f3", "e7-e5", "g2-g4", "d8-h4")
	if g.Status != StatusCheckmate || g.Winner == nil || *g.Winner != rules.Black || !g.IsCheck {
		t.Fatalf("status=%s winner=%v check=%v", g.Status, g.Winner, g.IsCheck)
	}
	if _, err := g.SubmitMove(alice.ID, sq("a2"), sq("a3")); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("move after mate err = %v", err)
	}
	if _, err := g.AdvanceClock(5); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("tick after mate err = %v", err)
	}
	if _, err := g.Resign(rules.White); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("resign after mate err = %v", err)
	}
}

func TestStalemateEndsGame(t *testing.T) {
	pos := rules.MustFEN("k7/8/2Q5/8/8/8/8/7K w - - 0 1")
	g := activeGame(t, Options{Position: &pos})
	g = play(t, g, "c6-c7")
	if g.Status != StatusStalemate || g.Winner != nil || g.IsCheck {
		t.Fatalf("status=%s winner=%v check=%v", g.Status, g.Winner, g.IsCheck)
	}
}

func TestPromotionRoundTrip(t *testing.T) {
	pos := rules.MustFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 40")
	g := activeGame(t, Options{Position: &pos})
	g, err := g.SubmitMove(alice.ID, sq("e7"), sq("e8"))
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if g.PromotionPending != sq("e8") || g.Position.SideToMove != rules.White || len(g.MoveLog) != 0 {
		t.Fatalf("pending=%s side=%s log=%v", g.PromotionPending, g.Position.SideToMove, g.MoveLog)
	}
	if _, err := g.SubmitMove(alice.ID, sq("e1"), sq("d1")); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("move during pending promotion err = %v", err)
	}
	if _, err := g.SubmitPromotionChoice(bob.ID, rules.Queen); !errors.Is(err, ErrInvalidSeatBinding) {
		t.Fatalf("opponent promotion err = %v", err)
	}
	if _, err := g.SubmitPromotionChoice(alice.ID, rules.King); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("king promotion err = %v", err)
	}
	g, err = g.SubmitPromotionChoice(alice.ID, rules.Knight)
	if err != nil {
		t.Fatalf("SubmitPromotionChoice: %v", err)
	}
	if p, _ := g.Position.Board.PieceAt(sq("e8")); p != (rules.Piece{Kind: rules.Knight, Color: rules.White}) {
		t.Fatalf("e8 = %v", p)
	}
	if g.HasPendingPromotion() || g.Position.SideToMove != rules.Black {
		t.Fatalf("promotion not settled")
	}
	want := []MoveRecord{{From: sq("e7"), To: sq("e8"), Promotion: rules.Knight}}
	if diff := cmp.Diff(want, g.MoveLog); diff != "" {
		t.Fatalf("log (-want +got):\n%s", diff)
	}
	if got := MovePairs(g.MoveLog); got[0] != "1. e7-e8=N" {
		t.Fatalf("pairs = %v", got)
	}
	if _, err := g.SubmitPromotionChoice(bob.ID, rules.Queen); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("promotion without pending err = %v", err)
	}
}

func TestResign(t *testing.T) {
	g := activeGame(t, Options{})
	g, err := g.ResignAs(bob.ID)
	if err != nil {
		t.Fatalf("ResignAs: %v", err)
	}
	if g.Status != StatusResigned || *g.Winner != rules.White {
		t.Fatalf("status=%s winner=%v", g.Status, g.Winner)
	}
	w, _ := Create("ROOM2", alice, Options{})
	if _, err := w.Resign(rules.White); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("resign while waiting err = %v", err)
	}
}

func TestAdvanceClock(t *testing.T) {
	g := activeGame(t, Options{ClockSeconds: 10})
	g, err := g.AdvanceClock(3)
	if err != nil {
		t.Fatalf("AdvanceClock: %v", err)
	}
	if g.Clocks != (Clocks{White: 7, Black: 10}) {
		t.Fatalf("clocks = %+v", g.Clocks)
	}
	g = play(t, g, "e2-e4")
	g, _ = g.AdvanceClock(25)
	if g.Clocks != (Clocks{White: 7, Black: 0}) {
		t.Fatalf("clocks = %+v", g.Clocks)
	}
	if g.Status != StatusActive {
		t.Fatalf("flag fall changed status to %s", g.Status)
	}
	v := g.Version
	g, _ = g.AdvanceClock(1)
	if g.Version != v {
		t.Fatalf("no-op tick bumped version")
	}
	w, _ := Create("ROOM2", alice, Options{})
	if _, err := w.AdvanceClock(1); !errors.Is(err, ErrActionNotPermitted) {
		t.Fatalf("tick while waiting err = %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := activeGame(t, Options{})
	g = play(t, g, "e2-e4", "d7-d5")
	g, _ = g.AdvanceClock(4)
	snap := g.Snapshot()
	if snap.CurrentPlayer != "white" || snap.EnPassantTarget != "d6" || snap.Board[4][4] != "P" || snap.Board[0][4] != "k" {
		t.Fatalf("snapshot = %+v", snap)
	}
	back, err := FromSnapshot(snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if diff := cmp.Diff(g, back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestSnapshotKeepsPendingPromotion(t *testing.T) {
	pos := rules.MustFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 40")
	g := activeGame(t, Options{Position: &pos})
	g, _ = g.SubmitMove(alice.ID, sq("e7"), sq("e8"))
	back, err := FromSnapshot(g.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if back.PromotionPending != sq("e8") || back.PendingFrom != sq("e7") {
		t.Fatalf("pending = %s from %s", back.PromotionPending, back.PendingFrom)
	}
	if _, err := back.SubmitPromotionChoice(alice.ID, rules.Queen); err != nil {
		t.Fatalf("promotion after restore: %v", err)
	}
}
