package chessdto

// MoveResult is returned after a move or promotion request.
type MoveResult struct {
	State *Snapshot `json:"state"`
	// SAN is the standard notation of the completed move; empty while a
	// promotion choice is pending.
	SAN      string `json:"san,omitempty"`
	Finished bool   `json:"finished"`
	Message  string `json:"message,omitempty"`
}

// SessionResponse wraps a snapshot with human status lines.
type SessionResponse struct {
	State   *Snapshot `json:"state"`
	Message string    `json:"message,omitempty"`
	Clock   string    `json:"clock,omitempty"`
}

type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}
