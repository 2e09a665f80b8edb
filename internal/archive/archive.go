package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/duelchess/internal/notation"
	"github.com/park285/duelchess/pkg/chessdto"
)

var ErrDuplicateGame = errors.New("duel game already archived")

// Result is a finished session handed over by the store.
type Result struct {
	GameID    string
	Code      string
	White     chessdto.Player
	Black     chessdto.Player
	Status    string // checkmate | stalemate | resigned | draw
	Winner    string // white | black | ""
	MovesUCI  []string
	Moves     []string // coordinate pairs, "e2-e4"
	StartFEN  string
	FinalFEN  string
	StartedAt time.Time
	EndedAt   time.Time
	WhiteLeft int // seconds
	BlackLeft int
}

// Recorder persists finished games.
type Recorder interface {
	SaveResult(ctx context.Context, r Result) error
	Recent(ctx context.Context, limit int) ([]chessdto.FinishedGame, error)
}

// Finish converts a result to its archived form, computing SAN and PGN.
func Finish(r Result) (chessdto.FinishedGame, error) {
	line, err := notation.Replay(r.StartFEN, r.MovesUCI)
	if err != nil {
		return chessdto.FinishedGame{}, fmt.Errorf("replay %s: %w", r.GameID, err)
	}
	finalFEN := r.FinalFEN
	if finalFEN == "" {
		finalFEN = line.FEN
	}
	token := PGNResult(r.Status, r.Winner)
	return chessdto.FinishedGame{
		GameID:      r.GameID,
		Code:        r.Code,
		White:       r.White,
		Black:       r.Black,
		Result:      token,
		Status:      r.Status,
		MovesCoord:  append([]string{}, r.Moves...),
		MovesSAN:    line.SAN,
		PGN:         BuildPGN(r, line, token),
		FinalFEN:    finalFEN,
		StartedAt:   r.StartedAt,
		EndedAt:     r.EndedAt,
		WhiteTimeMS: int64(r.WhiteLeft) * 1000,
		BlackTimeMS: int64(r.BlackLeft) * 1000,
	}, nil
}

// PGNResult maps a terminal status to the PGN result token.
func PGNResult(status, winner string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "stalemate", "draw":
		return "1/2-1/2"
	case "checkmate", "resigned":
		switch winner {
		case "white":
			return "1-0"
		case "black":
			return "0-1"
		}
	}
	return "*"
}

// BuildPGN renders headers and numbered SAN movetext.
func BuildPGN(r Result, line notation.Line, token string) string {
	var b strings.Builder
	date := r.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	fmt.Fprintf(&b, "[Event \"Duel %s\"]\n", sanitizePGN(r.Code))
	b.WriteString("[Site \"duelchess\"]\n")
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizePGN(r.White.Name))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizePGN(r.Black.Name))
	fmt.Fprintf(&b, "[Result \"%s\"]\n", token)
	if r.StartFEN != "" {
		b.WriteString("[SetUp \"1\"]\n")
		fmt.Fprintf(&b, "[FEN \"%s\"]\n", r.StartFEN)
	}
	if line.ECO != "" {
		fmt.Fprintf(&b, "[ECO \"%s\"]\n", line.ECO)
		fmt.Fprintf(&b, "[Opening \"%s\"]\n", sanitizePGN(line.Opening))
	}
	if r.Status != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(r.Status)))
	}
	b.WriteString("\n")

	for i := 0; i < len(line.SAN); i += 2 {
		fmt.Fprintf(&b, "%d. %s ", i/2+1, strings.TrimSpace(line.SAN[i]))
		if i+1 < len(line.SAN) {
			b.WriteString(strings.TrimSpace(line.SAN[i+1]))
			b.WriteString(" ")
		}
	}
	b.WriteString(token)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
