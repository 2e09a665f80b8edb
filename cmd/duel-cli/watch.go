package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/park285/duelchess/internal/feed"
	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/rules"
	"github.com/park285/duelchess/pkg/chessdto"
)

// watch prints every snapshot the feed delivers. DUEL_TOKEN, when set, is
// sent as a bearer token on the handshake.
func watch(ctx context.Context, url string, flip bool, cat *msgcat.Catalog, out io.Writer) error {
	c := feed.NewClient(url, 5)
	if tok := os.Getenv("DUEL_TOKEN"); tok != "" {
		c.SetHeader("Authorization", "Bearer "+tok)
	}
	return c.Watch(ctx, func(ev feed.Event) {
		if ev.State != nil {
			printSnapshot(out, *ev.State, flip, cat)
		}
	})
}

func printSnapshot(out io.Writer, snap chessdto.Snapshot, flip bool, cat *msgcat.Catalog) {
	pos, err := rules.ParseFEN(snap.FEN)
	if err != nil {
		fmt.Fprintf(out, "bad snapshot v%d: %v\n", snap.Version, err)
		return
	}
	var marks []rules.Square
	if n := len(snap.MoveLog); n > 0 {
		last := snap.MoveLog[n-1]
		for _, s := range []string{last.From, last.To} {
			if sq, err := rules.ParseSquare(s); err == nil {
				marks = append(marks, sq)
			}
		}
	}
	fmt.Fprintf(out, "\n%s  v%d\n", snap.Code, snap.Version)
	drawBoard(out, pos.Board, flip, marks...)
	fmt.Fprintln(out, cat.ClockLine(snap))
	fmt.Fprintln(out, cat.StatusLine(snap))
}
