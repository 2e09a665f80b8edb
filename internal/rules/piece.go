package rules

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("invalid color %q", s)
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// homeRank is the back rank of the side; pawnRank its pawn start rank.
func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return 7
}

func (c Color) pawnRank() int {
	if c == White {
		return 1
	}
	return 6
}

func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// Kind is a piece type. NoKind is the empty square.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}

// Letter returns the lowercase FEN letter, or 0 for NoKind.
func (k Kind) Letter() byte {
	if k == NoKind || int(k) >= len(kindLetters) {
		return 0
	}
	return kindLetters[k]
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// ParseKind accepts a name ("queen") or a letter ("q"/"Q").
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "p", "pawn":
		return Pawn, nil
	case "n", "knight":
		return Knight, nil
	case "b", "bishop":
		return Bishop, nil
	case "r", "rook":
		return Rook, nil
	case "q", "queen":
		return Queen, nil
	case "k", "king":
		return King, nil
	}
	return NoKind, fmt.Errorf("invalid piece kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = NoKind
		return nil
	}
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Promotable reports whether a pawn may become this kind.
func (k Kind) Promotable() bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

// Piece is a coloured piece. The zero value is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

var NoPiece = Piece{}

func (p Piece) Empty() bool { return p.Kind == NoKind }

// Letter returns the FEN letter: uppercase for White, "" when empty.
func (p Piece) Letter() string {
	l := p.Kind.Letter()
	if l == 0 {
		return ""
	}
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return string(l)
}

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// PieceFromLetter decodes a FEN letter.
func PieceFromLetter(l byte) (Piece, bool) {
	color := White
	switch {
	case l >= 'a' && l <= 'z':
		color = Black
	case l >= 'A' && l <= 'Z':
		l += 'a' - 'A'
	default:
		return NoPiece, false
	}
	for k, v := range kindLetters {
		if k != int(NoKind) && v == l {
			return Piece{Kind: Kind(k), Color: color}, true
		}
	}
	return NoPiece, false
}
