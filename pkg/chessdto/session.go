package chessdto

// Player is a seated participant.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Players struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type SideRights struct {
	KingSide  bool `json:"kingSide"`
	QueenSide bool `json:"queenSide"`
}

type CastlingRights struct {
	White SideRights `json:"white"`
	Black SideRights `json:"black"`
}

// MoveRecord is one completed ply in coordinate form. Promotion is the
// lowercase piece name ("queen") or empty.
type MoveRecord struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Snapshot is the wire form of a game session. Board is rank 8 first, each
// cell a FEN letter ("P" white, "p" black) or "" when empty.
type Snapshot struct {
	Code             string         `json:"code"`
	Board            [][]string     `json:"board"`
	FEN              string         `json:"fen"`
	CurrentPlayer    string         `json:"currentPlayer"`
	WhiteTime        int            `json:"whiteTime"`
	BlackTime        int            `json:"blackTime"`
	Moves            []string       `json:"moves"`
	MoveLog          []MoveRecord   `json:"moveLog"`
	Status           string         `json:"status"`
	Players          Players        `json:"players"`
	Winner           string         `json:"winner,omitempty"`
	CastlingRights   CastlingRights `json:"castlingRights"`
	EnPassantTarget  string         `json:"enPassantTarget,omitempty"`
	HalfMoveClock    int            `json:"halfMoveClock"`
	FullMoveNumber   int            `json:"fullMoveNumber"`
	IsCheck          bool           `json:"isCheck"`
	PromotionPending string         `json:"promotionPending,omitempty"`
	PromotionFrom    string         `json:"promotionFrom,omitempty"`
	Version          int64          `json:"version"`
}
