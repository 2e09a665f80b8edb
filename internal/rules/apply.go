package rules

import (
	"errors"
	"fmt"
)

var (
	ErrIllegal        = errors.New("illegal move")
	ErrBadPromotion   = errors.New("invalid promotion")
	ErrNoPromotionDue = errors.New("no promotion pending")
)

// IllegalMoveError carries the rejection reason. It matches ErrIllegal.
type IllegalMoveError struct {
	From   Square
	To     Square
	Reason Reason
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s-%s: %s", e.From, e.To, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegal }

// Effect describes what a move did beyond relocating the piece.
type Effect struct {
	Moved     Piece
	Captured  Piece
	Castled   bool
	EnPassant bool
	// PromotionPending is set when a pawn reached the far rank; the side to
	// move has not flipped and Promote must follow.
	PromotionPending bool
}

// Apply plays a legal move and returns the next position. An illegal move
// yields an *IllegalMoveError and the input position unchanged.
func Apply(pos Position, from, to Square) (Position, Effect, error) {
	if r := Classify(pos, from, to); r != ReasonNone {
		return pos, Effect{}, &IllegalMoveError{From: from, To: to, Reason: r}
	}

	b := pos.Board
	piece := b[from]
	eff := Effect{Moved: piece, Captured: b[to]}
	if isEnPassant(&b, piece, from, to, pos.EnPassant) {
		victim, _ := SquareAt(to.File(), from.Rank())
		eff.Captured = b[victim]
		eff.EnPassant = true
	}
	eff.Castled = isCastleShape(piece, from, to)

	next := pos
	next.Board = transform(b, from, to, pos.EnPassant)

	if piece.Kind == King {
		next.Castling.clear(piece.Color, true, true)
	}
	clearCorner(&next.Castling, from)
	clearCorner(&next.Castling, to)

	next.EnPassant = NoSquare
	if piece.Kind == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		next.EnPassant, _ = SquareAt(from.File(), (from.Rank()+to.Rank())/2)
	}

	if piece.Kind == Pawn || !eff.Captured.Empty() {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}

	if piece.Kind == Pawn && to.Rank() == piece.Color.Opponent().homeRank() {
		eff.PromotionPending = true
		return next, eff, nil
	}
	return finishTurn(next), eff, nil
}

// Promote replaces the pawn on sq with kind and completes the turn.
func Promote(pos Position, sq Square, kind Kind) (Position, error) {
	if !sq.Valid() {
		return pos, ErrNoPromotionDue
	}
	p := pos.Board[sq]
	if p.Kind != Pawn || p.Color != pos.SideToMove || sq.Rank() != p.Color.Opponent().homeRank() {
		return pos, ErrNoPromotionDue
	}
	if !kind.Promotable() {
		return pos, fmt.Errorf("%w: %q", ErrBadPromotion, kind.String())
	}
	next := pos
	next.Board = next.Board.With(sq, Piece{Kind: kind, Color: p.Color})
	return finishTurn(next), nil
}

func finishTurn(pos Position) Position {
	if pos.SideToMove == Black {
		pos.FullMoveNumber++
	}
	pos.SideToMove = pos.SideToMove.Opponent()
	return pos
}

// clearCorner drops the castling right tied to a rook corner when anything
// leaves or lands on it.
func clearCorner(c *CastlingRights, sq Square) {
	switch sq.String() {
	case "a1":
		c.clear(White, false, true)
	case "h1":
		c.clear(White, true, false)
	case "a8":
		c.clear(Black, false, true)
	case "h8":
		c.clear(Black, true, false)
	}
}
