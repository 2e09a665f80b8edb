package session

import (
	"errors"
	"slices"

	"github.com/park285/duelchess/internal/rules"
)

// DefaultClockSeconds is the per-side budget when Options leaves it unset.
const DefaultClockSeconds = 600

type Options struct {
	// ClockSeconds is each side's starting time; <= 0 means DefaultClockSeconds.
	ClockSeconds int
	// Position overrides the standard start, mainly for tests and puzzles.
	Position *rules.Position
}

// Create opens a session with host seated as White.
func Create(code string, host Identity, opts Options) (GameState, error) {
	if host.ID == "" {
		return GameState{}, badSeat("identity required")
	}
	clock := opts.ClockSeconds
	if clock <= 0 {
		clock = DefaultClockSeconds
	}
	pos := rules.NewPosition()
	if opts.Position != nil {
		pos = *opts.Position
	}
	return GameState{
		Code:             code,
		Position:         pos,
		Seats:            Seats{}.with(rules.White, host),
		Status:           StatusWaiting,
		PromotionPending: rules.NoSquare,
		PendingFrom:      rules.NoSquare,
		Clocks:           Clocks{White: clock, Black: clock},
		Version:          1,
	}, nil
}

// BindSeat fills an empty seat. Seats bind once; the game turns active when
// both are filled.
func (s GameState) BindSeat(color rules.Color, id Identity) (GameState, error) {
	if s.Status != StatusWaiting {
		return s, notPermitted("seats are closed in status %s", s.Status)
	}
	if id.ID == "" {
		return s, badSeat("identity required")
	}
	if s.Seats.get(color) != nil {
		return s, badSeat(color.String() + " seat already taken")
	}
	if _, seated := s.SeatOf(id.ID); seated {
		return s, badSeat("identity already seated")
	}
	next := s
	next.Seats = s.Seats.with(color, id)
	if next.Seats.White != nil && next.Seats.Black != nil {
		next.Status = StatusActive
	}
	next.Version++
	return next, nil
}

// Join binds id to the first free seat, White before Black.
func (s GameState) Join(id Identity) (GameState, error) {
	switch {
	case s.Status != StatusWaiting:
		return s, notPermitted("game is %s", s.Status)
	case s.Seats.White == nil:
		return s.BindSeat(rules.White, id)
	case s.Seats.Black == nil:
		return s.BindSeat(rules.Black, id)
	}
	return s, notPermitted("no free seat")
}

// SubmitMove plays from-to for the seat bound to id. A pawn reaching the far
// rank leaves the state in PromotionPending without logging the move.
func (s GameState) SubmitMove(id string, from, to rules.Square) (GameState, error) {
	if err := s.checkTurn(id); err != nil {
		return s, err
	}
	if s.HasPendingPromotion() {
		return s, notPermitted("promotion choice pending on %s", s.PromotionPending)
	}
	pos, eff, err := rules.Apply(s.Position, from, to)
	if err != nil {
		var ime *rules.IllegalMoveError
		if errors.As(err, &ime) {
			return s, illegal(ime.Reason, "")
		}
		return s, illegal(rules.ReasonNone, err.Error())
	}
	next := s
	next.Position = pos
	next.Version++
	if eff.PromotionPending {
		next.PromotionPending = to
		next.PendingFrom = from
		next.IsCheck = false
		return next, nil
	}
	return next.settle(MoveRecord{From: from, To: to}), nil
}

// SubmitPromotionChoice completes a pending promotion.
func (s GameState) SubmitPromotionChoice(id string, kind rules.Kind) (GameState, error) {
	if err := s.checkTurn(id); err != nil {
		return s, err
	}
	if !s.HasPendingPromotion() {
		return s, notPermitted("no promotion pending")
	}
	pos, err := rules.Promote(s.Position, s.PromotionPending, kind)
	if err != nil {
		return s, illegal(rules.ReasonNone, err.Error())
	}
	rec := MoveRecord{From: s.PendingFrom, To: s.PromotionPending, Promotion: kind}
	next := s
	next.Position = pos
	next.PromotionPending = rules.NoSquare
	next.PendingFrom = rules.NoSquare
	next.Version++
	return next.settle(rec), nil
}

// Resign ends an active game; the other side wins.
func (s GameState) Resign(color rules.Color) (GameState, error) {
	if s.Status != StatusActive {
		return s, notPermitted("cannot resign in status %s", s.Status)
	}
	w := color.Opponent()
	next := s
	next.Status = StatusResigned
	next.Winner = &w
	next.Version++
	return next, nil
}

// ResignAs resolves the seat of id and resigns for it.
func (s GameState) ResignAs(id string) (GameState, error) {
	c, ok := s.SeatOf(id)
	if !ok {
		return s, badSeat("not seated in this game")
	}
	return s.Resign(c)
}

// AdvanceClock charges elapsed seconds to the side to move. Clocks stop at
// zero; running out of time does not end the game.
func (s GameState) AdvanceClock(elapsed int) (GameState, error) {
	if s.Status != StatusActive {
		return s, notPermitted("clock stopped in status %s", s.Status)
	}
	if elapsed <= 0 {
		return s, nil
	}
	next := s
	if s.Position.SideToMove == rules.White {
		next.Clocks.White = max(0, s.Clocks.White-elapsed)
	} else {
		next.Clocks.Black = max(0, s.Clocks.Black-elapsed)
	}
	if next.Clocks == s.Clocks {
		return s, nil
	}
	next.Version++
	return next, nil
}

func (s GameState) checkTurn(id string) error {
	if s.Status != StatusActive {
		return notPermitted("game is %s", s.Status)
	}
	c, ok := s.SeatOf(id)
	if !ok {
		return badSeat("not seated in this game")
	}
	if c != s.Position.SideToMove {
		return badSeat("not your turn")
	}
	return nil
}

// settle logs the completed move and evaluates the side now to move.
func (s GameState) settle(rec MoveRecord) GameState {
	s.MoveLog = append(slices.Clip(s.MoveLog), rec)
	v := rules.Evaluate(s.Position)
	s.IsCheck = v.Check
	switch {
	case v.Checkmate:
		w := s.Position.SideToMove.Opponent()
		s.Status = StatusCheckmate
		s.Winner = &w
	case v.Stalemate:
		s.Status = StatusStalemate
	}
	return s
}
