package session

import (
	"fmt"

	"github.com/park285/duelchess/internal/rules"
)

// ErrorKind classifies a rejected transition. All kinds leave the state untouched.
type ErrorKind string

const (
	KindIllegalMove        ErrorKind = "illegal_move"
	KindInvalidSeatBinding ErrorKind = "invalid_seat_binding"
	KindNotPermitted       ErrorKind = "action_not_permitted"
)

// Error is the typed failure of every transition.
type Error struct {
	Kind   ErrorKind
	Reason rules.Reason
	Msg    string
}

func (e *Error) Error() string {
	if e.Kind == KindIllegalMove && e.Reason != rules.ReasonNone {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return string(e.Kind)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrIllegalMove) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrIllegalMove        = &Error{Kind: KindIllegalMove}
	ErrInvalidSeatBinding = &Error{Kind: KindInvalidSeatBinding}
	ErrActionNotPermitted = &Error{Kind: KindNotPermitted}
)

func illegal(r rules.Reason, msg string) error {
	return &Error{Kind: KindIllegalMove, Reason: r, Msg: msg}
}

func badSeat(msg string) error { return &Error{Kind: KindInvalidSeatBinding, Msg: msg} }

func notPermitted(format string, args ...any) error {
	return &Error{Kind: KindNotPermitted, Msg: fmt.Sprintf(format, args...)}
}
