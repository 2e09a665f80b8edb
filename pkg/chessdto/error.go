package chessdto

// Error codes carried by DomainError.Code.
const (
	CodeIllegalMove     = "illegal_move"
	CodeInvalidSeat     = "invalid_seat_binding"
	CodeNotPermitted    = "action_not_permitted"
	CodeNotFound        = "not_found"
	CodeCodeTaken       = "code_taken"
	CodeConflict        = "conflict"
	CodeInvalidArgument = "invalid_argument"
	CodeInternal        = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "duel service error"
}
