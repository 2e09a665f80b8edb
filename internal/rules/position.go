package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// SideRights holds the two castling flags of one colour.
type SideRights struct {
	KingSide  bool `json:"kingSide"`
	QueenSide bool `json:"queenSide"`
}

// CastlingRights only ever go from true to false.
type CastlingRights struct {
	White SideRights `json:"white"`
	Black SideRights `json:"black"`
}

func AllCastlingRights() CastlingRights {
	return CastlingRights{
		White: SideRights{KingSide: true, QueenSide: true},
		Black: SideRights{KingSide: true, QueenSide: true},
	}
}

func (c CastlingRights) For(color Color) SideRights {
	if color == Black {
		return c.Black
	}
	return c.White
}

func (c *CastlingRights) clear(color Color, kingSide, queenSide bool) {
	r := &c.White
	if color == Black {
		r = &c.Black
	}
	if kingSide {
		r.KingSide = false
	}
	if queenSide {
		r.QueenSide = false
	}
}

func (c CastlingRights) String() string {
	var sb strings.Builder
	if c.White.KingSide {
		sb.WriteByte('K')
	}
	if c.White.QueenSide {
		sb.WriteByte('Q')
	}
	if c.Black.KingSide {
		sb.WriteByte('k')
	}
	if c.Black.QueenSide {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Position is everything the rules need to judge and apply a move.
type Position struct {
	Board          Board          `json:"-"`
	SideToMove     Color          `json:"sideToMove"`
	Castling       CastlingRights `json:"castlingRights"`
	EnPassant      Square         `json:"enPassantTarget"`
	HalfMoveClock  int            `json:"halfMoveClock"`
	FullMoveNumber int            `json:"fullMoveNumber"`
}

// NewPosition is the standard starting position, White to move.
func NewPosition() Position {
	return Position{
		Board:          InitialBoard(),
		SideToMove:     White,
		Castling:       AllCastlingRights(),
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
}

// FEN encodes the position in Forsyth-Edwards Notation.
func (p Position) FEN() string {
	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		p.Board.Placement(), side, p.Castling, p.EnPassant, p.HalfMoveClock, p.FullMoveNumber)
}

// ParseFEN decodes a FEN string. Move counters are optional.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("fen: want at least 4 fields, got %d", len(fields))
	}
	board, err := ParsePlacement(fields[0])
	if err != nil {
		return Position{}, fmt.Errorf("fen: %w", err)
	}
	pos := Position{Board: board, EnPassant: NoSquare, FullMoveNumber: 1}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("fen: bad side %q", fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				pos.Castling.White.KingSide = true
			case 'Q':
				pos.Castling.White.QueenSide = true
			case 'k':
				pos.Castling.Black.KingSide = true
			case 'q':
				pos.Castling.Black.QueenSide = true
			default:
				return Position{}, fmt.Errorf("fen: bad castling %q", fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Position{}, fmt.Errorf("fen: %w", err)
		}
		pos.EnPassant = sq
	}

	if len(fields) >= 5 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return Position{}, fmt.Errorf("fen: bad half-move clock %q", fields[4])
		}
		pos.HalfMoveClock = n
	}
	if len(fields) >= 6 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return Position{}, fmt.Errorf("fen: bad full-move number %q", fields[5])
		}
		pos.FullMoveNumber = n
	}
	return pos, nil
}

// MustFEN is ParseFEN for fixed, known-good inputs.
func MustFEN(fen string) Position {
	pos, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}
