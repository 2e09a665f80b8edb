// Command duel-cli plays a local hot-seat game in the terminal, or follows a
// remote session over its websocket feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/obslog"
)

func main() {
	clock := flag.Int("clock", 600, "seconds per side for local play")
	fen := flag.String("fen", "", "start from this FEN instead of the standard position")
	flip := flag.Bool("flip", false, "draw the board from Black's side")
	noColor := flag.Bool("no-color", false, "disable ANSI colours")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [play | watch <ws-url>]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	// Keep the board readable unless a level is asked for.
	opts := obslog.OptionsFromEnv()
	if os.Getenv("LOG_LEVEL") == "" {
		opts.Level = "warn"
	}
	if err := obslog.Init(opts); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
	}

	cat, err := msgcat.New(os.Getenv("MESSAGES_DIR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "messages:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	mode := "play"
	if len(args) > 0 {
		mode = args[0]
	}
	switch mode {
	case "play":
		g, err := newLocalGame(*fen, *clock)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		g.flip = *flip
		g.cat = cat
		if err := g.run(ctx, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "watch":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		if err := watch(ctx, args[1], *flip, cat, os.Stdout); err != nil && ctx.Err() == nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}
