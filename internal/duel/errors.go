package duel

import (
	"errors"

	"github.com/park285/duelchess/internal/session"
	"github.com/park285/duelchess/pkg/chessdto"
)

var (
	ErrNotFound       = errors.New("duel not found")
	ErrCodeTaken      = errors.New("duel code already in use")
	ErrConflict       = errors.New("concurrent update, retry")
	ErrInvalidCode    = errors.New("invalid duel code")
	ErrNotInitialized = errors.New("duel manager not initialized")
)

// AsDomainError maps store and session failures to the API error shape.
func AsDomainError(err error) chessdto.DomainError {
	var se *session.Error
	switch {
	case err == nil:
		return chessdto.DomainError{}
	case errors.As(err, &se):
		code := chessdto.CodeNotPermitted
		switch se.Kind {
		case session.KindIllegalMove:
			code = chessdto.CodeIllegalMove
		case session.KindInvalidSeatBinding:
			code = chessdto.CodeInvalidSeat
		}
		return chessdto.DomainError{Code: code, Message: se.Error()}
	case errors.Is(err, ErrNotFound):
		return chessdto.DomainError{Code: chessdto.CodeNotFound, Message: err.Error()}
	case errors.Is(err, ErrCodeTaken):
		return chessdto.DomainError{Code: chessdto.CodeCodeTaken, Message: err.Error()}
	case errors.Is(err, ErrConflict):
		return chessdto.DomainError{Code: chessdto.CodeConflict, Message: err.Error(), Retryable: true}
	case errors.Is(err, ErrInvalidCode):
		return chessdto.DomainError{Code: chessdto.CodeInvalidArgument, Message: err.Error()}
	}
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return de
	}
	return chessdto.DomainError{Code: chessdto.CodeInternal, Message: "internal error", Retryable: true}
}
