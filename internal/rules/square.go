package rules

import (
	"fmt"
	"strings"
)

// Square is a board coordinate, index = file + 8*rank (a1 = 0, h8 = 63).
type Square uint8

// NoSquare marks an absent square (no en passant target, no pending promotion).
const NoSquare Square = 64

// SquareAt returns the square for zero-based file and rank; ok is false when off-board.
func SquareAt(file, rank int) (Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return Square(file + rank*8), true
}

// ParseSquare parses algebraic coordinates like "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	sq, ok := SquareAt(int(s[0])-'a', int(s[1])-'1')
	if !ok {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

func (s Square) Valid() bool { return s < 64 }
func (s Square) File() int   { return int(s) % 8 }
func (s Square) Rank() int   { return int(s) / 8 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// MarshalText encodes NoSquare as an empty string.
func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return []byte{}, nil
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "-" {
		*s = NoSquare
		return nil
	}
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

func (s Square) offset(df, dr int) (Square, bool) {
	return SquareAt(s.File()+df, s.Rank()+dr)
}

// MustSquare is ParseSquare for literals known to be valid.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}
