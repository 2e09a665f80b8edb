package chessdto

import "time"

// FinishedGame is an archived game.
type FinishedGame struct {
	GameID      string    `json:"gameId"`
	Code        string    `json:"code"`
	White       Player    `json:"white"`
	Black       Player    `json:"black"`
	Result      string    `json:"result"`
	Status      string    `json:"status"`
	MovesCoord  []string  `json:"movesCoord"`
	MovesSAN    []string  `json:"movesSan"`
	PGN         string    `json:"pgn"`
	FinalFEN    string    `json:"finalFen"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
	WhiteTimeMS int64     `json:"whiteTimeMs"`
	BlackTimeMS int64     `json:"blackTimeMs"`
}
