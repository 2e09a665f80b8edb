package chessdto

type CreateRequest struct {
	// Code is optional; the server picks one when empty.
	Code         string `json:"code,omitempty"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"name,omitempty"`
	ClockSeconds int    `json:"clockSeconds,omitempty"`
}

type JoinRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type MoveRequest struct {
	PlayerID string `json:"playerId"`
	From     string `json:"from"`
	To       string `json:"to"`
	// Promotion may accompany a pawn move to the last rank to finish it in
	// one request.
	Promotion string `json:"promotion,omitempty"`
}

type PromoteRequest struct {
	PlayerID string `json:"playerId"`
	Piece    string `json:"piece"`
}

type ResignRequest struct {
	PlayerID string `json:"playerId"`
}

type TargetsResponse struct {
	From    string   `json:"from"`
	Targets []string `json:"targets"`
}

type RecentResponse struct {
	Games []FinishedGame `json:"games"`
}
