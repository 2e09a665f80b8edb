package rules

import (
	"fmt"
	"strings"
)

// Board maps each square to an optional piece. It is a value type: copying a
// Board is a 64-byte copy, which is what hypothetical boards rely on.
type Board [64]Piece

// InitialBoard returns the standard starting arrangement.
func InitialBoard() Board {
	var b Board
	back := [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b[f] = Piece{Kind: back[f], Color: White}
		b[8+f] = Piece{Kind: Pawn, Color: White}
		b[48+f] = Piece{Kind: Pawn, Color: Black}
		b[56+f] = Piece{Kind: back[f], Color: Black}
	}
	return b
}

// PieceAt returns the piece on sq; ok is false for empty or off-board squares.
func (b Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return NoPiece, false
	}
	p := b[sq]
	return p, !p.Empty()
}

// WithMove returns a new board with from emptied and to holding the moved
// piece, or replacement when it is not empty. No legality checks.
func (b Board) WithMove(from, to Square, replacement Piece) Board {
	if !from.Valid() || !to.Valid() {
		return b
	}
	moved := b[from]
	if !replacement.Empty() {
		moved = replacement
	}
	b[from] = NoPiece
	b[to] = moved
	return b
}

func (b Board) With(sq Square, p Piece) Board {
	if sq.Valid() {
		b[sq] = p
	}
	return b
}

func (b Board) Without(sq Square) Board { return b.With(sq, NoPiece) }

// KingSquare locates the king of color.
func (b Board) KingSquare(color Color) (Square, bool) {
	for i, p := range b {
		if p.Kind == King && p.Color == color {
			return Square(i), true
		}
	}
	return NoSquare, false
}

// Rows renders the board as letter rows, rank 8 first ("P", "p", "").
func (b Board) Rows() [8][8]string {
	var out [8][8]string
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			out[7-r][f] = b[f+r*8].Letter()
		}
	}
	return out
}

// Placement encodes the piece-placement field of a FEN string.
func (b Board) Placement() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b[f+r*8]
			if p.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ParsePlacement decodes a FEN piece-placement field.
func ParsePlacement(s string) (Board, error) {
	var b Board
	ranks := strings.Split(strings.TrimSpace(s), "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("placement: want 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		r := 7 - i
		f := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				f += int(c - '0')
				continue
			}
			p, ok := PieceFromLetter(c)
			if !ok {
				return b, fmt.Errorf("placement: bad piece %q", c)
			}
			if f > 7 {
				return b, fmt.Errorf("placement: rank %d overflows", r+1)
			}
			b[f+r*8] = p
			f++
		}
		if f != 8 {
			return b, fmt.Errorf("placement: rank %d has %d files", r+1, f)
		}
	}
	return b, nil
}

// String draws the board for debugging, rank 8 on top.
func (b Board) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		sb.WriteByte(byte('1' + r))
		sb.WriteByte(' ')
		for f := 0; f < 8; f++ {
			l := b[f+r*8].Letter()
			if l == "" {
				l = "."
			}
			sb.WriteString(l)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh")
	return sb.String()
}
