// Package notation replays coordinate move logs through corentings/chess to
// produce standard algebraic notation, the final FEN and the ECO opening.
package notation

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// Line is a replayed game.
type Line struct {
	SAN     []string
	FEN     string
	ECO     string
	Opening string
}

var (
	bookOnce sync.Once
	book     *opening.BookECO
)

func ecoBook() *opening.BookECO {
	bookOnce.Do(func() { book = opening.NewBookECO() })
	return book
}

// Replay plays UCI moves ("e2e4", "e7e8q") from startFEN, or from the
// standard position when startFEN is empty.
func Replay(startFEN string, moves []string) (Line, error) {
	game, err := newGame(startFEN)
	if err != nil {
		return Line{}, err
	}
	line := Line{SAN: make([]string, 0, len(moves))}
	for i, raw := range moves {
		uci := strings.ToLower(strings.TrimSpace(raw))
		pos := game.Position()
		mv, err := nchess.UCINotation{}.Decode(pos, uci)
		if err != nil {
			return Line{}, fmt.Errorf("move %d %q: %w", i+1, raw, err)
		}
		san := nchess.AlgebraicNotation{}.Encode(pos, mv)
		if err := game.Move(mv, nil); err != nil {
			return Line{}, fmt.Errorf("move %d %q: %w", i+1, raw, err)
		}
		line.SAN = append(line.SAN, san)
	}
	line.FEN = game.FEN()
	if strings.TrimSpace(startFEN) == "" {
		if b := ecoBook(); b != nil {
			if eco := b.Find(game.Moves()); eco != nil {
				line.ECO, line.Opening = eco.Code(), eco.Title()
			}
		}
	}
	return line, nil
}

// SAN returns the algebraic form of a single move from fen.
func SAN(fen, uci string) (string, error) {
	game, err := newGame(fen)
	if err != nil {
		return "", err
	}
	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, strings.ToLower(strings.TrimSpace(uci)))
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", uci, err)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

func newGame(fen string) (*nchess.Game, error) {
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		return nchess.NewGame(), nil
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return nchess.NewGame(opt), nil
}
