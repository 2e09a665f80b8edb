package rules

// Attacked reports whether any piece of color by attacks sq. Pawns attack
// diagonally whether or not sq is occupied; castling is never an attack.
func Attacked(b Board, sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	for i := range b {
		p := b[i]
		if p.Empty() || p.Color != by {
			continue
		}
		if attacks(&b, p, Square(i), sq) {
			return true
		}
	}
	return false
}

func attacks(b *Board, p Piece, from, to Square) bool {
	if from == to {
		return false
	}
	df := to.File() - from.File()
	dr := to.Rank() - from.Rank()
	adf, adr := abs(df), abs(dr)
	switch p.Kind {
	case Pawn:
		return adf == 1 && dr == p.Color.forward()
	case Knight:
		return (adf == 1 && adr == 2) || (adf == 2 && adr == 1)
	case Bishop:
		return adf == adr && pathClear(b, from, to)
	case Rook:
		return (df == 0 || dr == 0) && pathClear(b, from, to)
	case Queen:
		return (df == 0 || dr == 0 || adf == adr) && pathClear(b, from, to)
	case King:
		return adf <= 1 && adr <= 1
	}
	return false
}

// IsInCheck reports whether color's king is attacked. A board without that
// king is never in check.
func IsInCheck(b Board, color Color) bool {
	k, ok := b.KingSquare(color)
	if !ok {
		return false
	}
	return Attacked(b, k, color.Opponent())
}

// HasLegalMove runs the exhaustive from×to search for color. The position's
// en passant target and castling rights take part, so an en passant capture
// can be the only escape.
func HasLegalMove(pos Position, color Color) bool {
	pos.SideToMove = color
	for from := Square(0); from < 64; from++ {
		p := pos.Board[from]
		if p.Empty() || p.Color != color {
			continue
		}
		for to := Square(0); to < 64; to++ {
			if Classify(pos, from, to) == ReasonNone {
				return true
			}
		}
	}
	return false
}

func IsCheckmate(pos Position, color Color) bool {
	return IsInCheck(pos.Board, color) && !HasLegalMove(pos, color)
}

func IsStalemate(pos Position, color Color) bool {
	return !IsInCheck(pos.Board, color) && !HasLegalMove(pos, color)
}

// Verdict is the post-move evaluation for the side now to move.
type Verdict struct {
	Check     bool
	Checkmate bool
	Stalemate bool
}

func (v Verdict) Terminal() bool { return v.Checkmate || v.Stalemate }

// Evaluate computes the Verdict for pos.SideToMove with a single move search.
func Evaluate(pos Position) Verdict {
	side := pos.SideToMove
	check := IsInCheck(pos.Board, side)
	hasMove := HasLegalMove(pos, side)
	return Verdict{
		Check:     check,
		Checkmate: check && !hasMove,
		Stalemate: !check && !hasMove,
	}
}
