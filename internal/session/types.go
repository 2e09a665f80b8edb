package session

import (
	"fmt"
	"strings"

	"github.com/park285/duelchess/internal/rules"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusResigned  Status = "resigned"
	// StatusDraw is reserved; no transition produces it yet.
	StatusDraw Status = "draw"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCheckmate, StatusStalemate, StatusResigned, StatusDraw:
		return true
	}
	return false
}

// Identity is an opaque participant id plus display name, supplied by the host.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Seats struct {
	White *Identity `json:"white"`
	Black *Identity `json:"black"`
}

func (s Seats) get(c rules.Color) *Identity {
	if c == rules.Black {
		return s.Black
	}
	return s.White
}

func (s Seats) with(c rules.Color, id Identity) Seats {
	if c == rules.Black {
		s.Black = &id
	} else {
		s.White = &id
	}
	return s
}

// Clocks holds remaining seconds per side.
type Clocks struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (c Clocks) For(color rules.Color) int {
	if color == rules.Black {
		return c.Black
	}
	return c.White
}

// MoveRecord is one completed ply. Promotion is NoKind unless the pawn promoted.
type MoveRecord struct {
	From      rules.Square `json:"from"`
	To        rules.Square `json:"to"`
	Promotion rules.Kind   `json:"promotion,omitempty"`
}

// String is the coordinate pair form, e.g. "e2-e4".
func (m MoveRecord) String() string { return m.From.String() + "-" + m.To.String() }

// Display appends the promotion piece, e.g. "e7-e8=Q".
func (m MoveRecord) Display() string {
	if m.Promotion == rules.NoKind {
		return m.String()
	}
	return m.String() + "=" + strings.ToUpper(string(m.Promotion.Letter()))
}

// UCI is the long algebraic form with a lowercase promotion suffix.
func (m MoveRecord) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != rules.NoKind {
		s += string(m.Promotion.Letter())
	}
	return s
}

// MovePairs groups the log two plies per full move: "1. e2-e4 e7-e5".
func MovePairs(log []MoveRecord) []string {
	out := make([]string, 0, (len(log)+1)/2)
	for i := 0; i < len(log); i += 2 {
		line := fmt.Sprintf("%d. %s", i/2+1, log[i].Display())
		if i+1 < len(log) {
			line += " " + log[i+1].Display()
		}
		out = append(out, line)
	}
	return out
}

// GameState is the aggregate root of one session.
type GameState struct {
	Code     string
	Position rules.Position
	Seats    Seats
	Status   Status
	Winner   *rules.Color
	IsCheck  bool
	// PromotionPending is the square holding a pawn awaiting its piece choice
	// (NoSquare otherwise); PendingFrom is that move's origin.
	PromotionPending rules.Square
	PendingFrom      rules.Square
	Clocks           Clocks
	MoveLog          []MoveRecord
	// Version counts accepted transitions.
	Version int64
}

func (s GameState) HasPendingPromotion() bool { return s.PromotionPending.Valid() }

// SeatOf returns the colour bound to id; ok is false for spectators.
func (s GameState) SeatOf(id string) (rules.Color, bool) {
	if id == "" {
		return rules.White, false
	}
	if s.Seats.White != nil && s.Seats.White.ID == id {
		return rules.White, true
	}
	if s.Seats.Black != nil && s.Seats.Black.ID == id {
		return rules.Black, true
	}
	return rules.White, false
}

// CanMove reports whether id may submit a move right now.
func (s GameState) CanMove(id string) bool {
	c, ok := s.SeatOf(id)
	return ok && s.Status == StatusActive && !s.HasPendingPromotion() && c == s.Position.SideToMove
}
