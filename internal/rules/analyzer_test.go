package rules

import "testing"

func TestCheckmateQueenAndKing(t *testing.T) {
	pos := MustFEN("7k/6Q1/5K2/8/8/8/8/8 b - - 0 1")
	if !IsInCheck(pos.Board, Black) {
		t.Fatalf("black should be in check")
	}
	if !IsCheckmate(pos, Black) {
		t.Fatalf("expected checkmate")
	}
	if IsStalemate(pos, Black) {
		t.Fatalf("checkmate is not stalemate")
	}
	v := Evaluate(pos)
	if !v.Checkmate || !v.Check || v.Stalemate {
		t.Fatalf("verdict %+v", v)
	}
}

func TestCheckButNotMateWhenQueenCapturable(t *testing.T) {
	pos := MustFEN("7k/6Q1/8/8/8/8/8/K7 b - - 0 1")
	if !IsInCheck(pos.Board, Black) || IsCheckmate(pos, Black) {
		t.Fatalf("undefended queen can be captured")
	}
}

func TestStalemate(t *testing.T) {
	pos := MustFEN("k7/2Q5/8/8/8/8/8/7K b - - 0 1")
	if IsInCheck(pos.Board, Black) {
		t.Fatalf("black should not be in check")
	}
	if !IsStalemate(pos, Black) {
		t.Fatalf("expected stalemate")
	}
	if IsCheckmate(pos, Black) {
		t.Fatalf("stalemate is not checkmate")
	}
}

func TestBareKingsAreNeverStalemate(t *testing.T) {
	pos := MustFEN("k7/8/1K6/8/8/8/8/8 b - - 0 1")
	if IsStalemate(pos, Black) || IsCheckmate(pos, Black) {
		t.Fatalf("bare king on a8 still has b8")
	}
}

func TestEnPassantCanBeOnlyEscape(t *testing.T) {
	// d7-d5 checks the king on e4; exd6 e.p. removes the checker.
	pos := MustFEN("8/8/8/3pP3/4K3/8/8/k7 w - d6 0 2")
	if !IsInCheck(pos.Board, White) {
		t.Fatalf("white king should be in check from d5")
	}
	if !IsLegalMove(pos, MustSquare("e5"), MustSquare("d6")) {
		t.Fatalf("en passant should resolve the check")
	}
}

func TestMissingKingIsNotInCheck(t *testing.T) {
	pos := MustFEN("8/8/8/8/8/8/8/q6k w - - 0 1")
	if IsInCheck(pos.Board, White) {
		t.Fatalf("no white king means no check")
	}
}

func TestAttackedPawnDiagonals(t *testing.T) {
	b := MustFEN("8/8/8/8/4p3/8/8/8 w - - 0 1").Board
	if !Attacked(b, MustSquare("d3"), Black) || !Attacked(b, MustSquare("f3"), Black) {
		t.Fatalf("black pawn should attack d3/f3")
	}
	if Attacked(b, MustSquare("e3"), Black) {
		t.Fatalf("pawn push square is not attacked")
	}
}
