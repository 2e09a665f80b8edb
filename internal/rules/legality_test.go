package rules

import (
	"testing"
)

func TestClassifyReasons(t *testing.T) {
	start := NewPosition()
	pinned := MustFEN("4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	castle := MustFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	tests := []struct {
		name     string
		pos      Position
		from, to Square
		want     Reason
	}{
		{"off board", start, NoSquare, MustSquare("e4"), ReasonOffBoard},
		{"same square", start, MustSquare("e2"), MustSquare("e2"), ReasonSameSquare},
		{"empty origin", start, MustSquare("e4"), MustSquare("e5"), ReasonNoPiece},
		{"wrong colour", start, MustSquare("e7"), MustSquare("e5"), ReasonWrongColor},
		{"own piece", start, MustSquare("a1"), MustSquare("a2"), ReasonOwnPieceAtTarget},
		{"pawn single", start, MustSquare("e2"), MustSquare("e3"), ReasonNone},
		{"pawn double", start, MustSquare("e2"), MustSquare("e4"), ReasonNone},
		{"pawn triple", start, MustSquare("e2"), MustSquare("e5"), ReasonBadPattern},
		{"pawn diagonal empty", start, MustSquare("e2"), MustSquare("d3"), ReasonBadPattern},
		{"pawn backwards", MustFEN("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1"), MustSquare("e4"), MustSquare("e3"), ReasonBadPattern},
		{"pawn blocked", MustFEN("4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1"), MustSquare("e2"), MustSquare("e3"), ReasonPathBlocked},
		{"pawn double blocked", MustFEN("4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1"), MustSquare("e2"), MustSquare("e4"), ReasonPathBlocked},
		{"pawn double off home", MustFEN("4k3/8/8/8/8/4P3/8/4K3 w - - 0 1"), MustSquare("e3"), MustSquare("e5"), ReasonBadPattern},
		{"knight jump", start, MustSquare("g1"), MustSquare("f3"), ReasonNone},
		{"knight bad", start, MustSquare("g1"), MustSquare("g3"), ReasonBadPattern},
		{"bishop blocked", start, MustSquare("c1"), MustSquare("e3"), ReasonPathBlocked},
		{"rook blocked", start, MustSquare("a1"), MustSquare("a4"), ReasonPathBlocked},
		{"rook diagonal", castle, MustSquare("a1"), MustSquare("b2"), ReasonBadPattern},
		{"queen knight shape", start, MustSquare("d1"), MustSquare("e3"), ReasonBadPattern},
		{"king two squares off home", MustFEN("4k3/8/8/8/3K4/8/8/8 w - - 0 1"), MustSquare("d4"), MustSquare("f4"), ReasonBadPattern},
		{"pinned bishop", pinned, MustSquare("e2"), MustSquare("d3"), ReasonSelfCheck},
		{"king into check", MustFEN("4k3/8/8/8/8/8/3r4/4K3 w - - 0 1"), MustSquare("e1"), MustSquare("e2"), ReasonSelfCheck},
		{"king captures defended rook", MustFEN("4k3/8/8/8/8/3r4/3r4/4K3 w - - 0 1"), MustSquare("e1"), MustSquare("d2"), ReasonSelfCheck},
		{"castle king side", castle, MustSquare("e1"), MustSquare("g1"), ReasonNone},
		{"castle queen side", castle, MustSquare("e1"), MustSquare("c1"), ReasonNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.pos, tc.from, tc.to); got != tc.want {
				t.Fatalf("Classify(%s, %s) = %q, want %q\n%s", tc.from, tc.to, got, tc.want, tc.pos.Board)
			}
		})
	}
}

func TestIsLegalCoordsMalformed(t *testing.T) {
	pos := NewPosition()
	for _, pair := range [][2]string{{"z9", "e4"}, {"e2", ""}, {"e2e4", "e5"}} {
		ok, r := IsLegalCoords(pos, pair[0], pair[1])
		if ok || r != ReasonOffBoard {
			t.Errorf("IsLegalCoords(%q,%q) = %v,%q", pair[0], pair[1], ok, r)
		}
	}
	if ok, r := IsLegalCoords(pos, "e2", "e4"); !ok || r != ReasonNone {
		t.Fatalf("e2-e4 should be legal, got %v %q", ok, r)
	}
}

func TestCastlingConditions(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		to   string
		want Reason
	}{
		{"rights cleared", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", "g1", ReasonCastlingRights},
		{"queen side rights cleared", "r3k2r/8/8/8/8/8/8/R3K2R w Kkq - 0 1", "c1", ReasonCastlingRights},
		{"rook missing", "r3k2r/8/8/8/8/8/8/R3K3 w KQkq - 0 1", "g1", ReasonCastlingRights},
		{"piece between", "r3k2r/8/8/8/8/8/8/R3KN1R w KQkq - 0 1", "g1", ReasonPathBlocked},
		{"b1 occupied blocks queen side", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", "c1", ReasonPathBlocked},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", "g1", ReasonCastleInCheck},
		{"through attacked f1", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", "g1", ReasonCastleThroughCheck},
		{"landing attacked g1", "r3k2r/8/8/8/8/8/6r1/R3K2R w KQkq - 0 1", "g1", ReasonCastleThroughCheck},
		{"pawn guards f1", "r3k2r/8/8/8/8/8/6p1/R3K2R w KQkq - 0 1", "g1", ReasonCastleThroughCheck},
		{"b1 attacked is fine", "r3k2r/8/8/8/8/8/1r6/R3K2R w KQkq - 0 1", "c1", ReasonNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := MustFEN(tc.fen)
			if got := Classify(pos, MustSquare("e1"), MustSquare(tc.to)); got != tc.want {
				t.Fatalf("Classify(e1,%s) = %q, want %q", tc.to, got, tc.want)
			}
		})
	}
}

func TestEnPassantOnlyAgainstStoredTarget(t *testing.T) {
	withTarget := MustFEN("4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 2")
	if got := Classify(withTarget, MustSquare("d5"), MustSquare("e6")); got != ReasonNone {
		t.Fatalf("en passant should be legal, got %q", got)
	}
	noTarget := MustFEN("4k3/8/8/3Pp3/8/8/8/4K3 w - - 0 2")
	if got := Classify(noTarget, MustSquare("d5"), MustSquare("e6")); got != ReasonBadPattern {
		t.Fatalf("en passant without target should fail, got %q", got)
	}
	// e.p. that exposes the king along the rank is self-check
	exposed := MustFEN("8/8/8/K2Pp2r/8/8/8/4k3 w - e6 0 2")
	if got := Classify(exposed, MustSquare("d5"), MustSquare("e6")); got != ReasonSelfCheck {
		t.Fatalf("rank-pinned en passant = %q, want self-check", got)
	}
}

func TestLegalTargets(t *testing.T) {
	pos := NewPosition()
	got := LegalTargets(pos, MustSquare("g1"))
	if len(got) != 2 || got[0] != MustSquare("f3") || got[1] != MustSquare("h3") {
		t.Fatalf("g1 targets = %v", got)
	}
	if n := len(LegalTargets(pos, MustSquare("e7"))); n != 0 {
		t.Fatalf("opponent piece should have no targets, got %d", n)
	}
}

func perft(pos Position, depth int) int {
	if depth == 0 {
		return 1
	}
	moves := LegalMoves(pos)
	if depth == 1 {
		return len(moves)
	}
	total := 0
	for _, m := range moves {
		next, eff, err := Apply(pos, m.From, m.To)
		if err != nil {
			panic(err)
		}
		if eff.PromotionPending {
			next, err = Promote(next, m.To, Queen)
			if err != nil {
				panic(err)
			}
		}
		total += perft(next, depth-1)
	}
	return total
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		want  int
	}{
		{"start d1", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 1, 20},
		{"start d2", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 2, 400},
		{"start d3", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 3, 8902},
		{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"endgame d1", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1, 14},
		{"endgame d2", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2, 191},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if testing.Short() && tc.want > 1000 {
				t.Skip("short mode")
			}
			if got := perft(MustFEN(tc.fen), tc.depth); got != tc.want {
				t.Fatalf("perft(%d) = %d, want %d", tc.depth, got, tc.want)
			}
		})
	}
}
