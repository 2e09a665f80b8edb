package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/duelchess/internal/msgcat"
	"github.com/park285/duelchess/internal/obslog"
	"github.com/park285/duelchess/internal/rules"
	"github.com/park285/duelchess/internal/session"
)

var (
	whiteSeat = session.Identity{ID: "local-white", Name: "White"}
	blackSeat = session.Identity{ID: "local-black", Name: "Black"}
)

// localGame drives one session with both seats at the same keyboard. Wall
// time between prompts is charged to the side to move.
type localGame struct {
	st   session.GameState
	cat  *msgcat.Catalog
	flip bool
	now  func() time.Time
	last time.Time
	// carry is the sub-second remainder not yet charged.
	carry time.Duration
}

func newLocalGame(fen string, clock int) (*localGame, error) {
	opts := session.Options{ClockSeconds: clock}
	if strings.TrimSpace(fen) != "" {
		pos, err := rules.ParseFEN(fen)
		if err != nil {
			return nil, err
		}
		opts.Position = &pos
	}
	st, err := session.Create("local", whiteSeat, opts)
	if err != nil {
		return nil, err
	}
	if st, err = st.Join(blackSeat); err != nil {
		return nil, err
	}
	return &localGame{st: st, now: time.Now}, nil
}

func (g *localGame) mover() string {
	if g.st.Position.SideToMove == rules.Black {
		return blackSeat.ID
	}
	return whiteSeat.ID
}

func (g *localGame) charge() {
	now := g.now()
	if g.last.IsZero() {
		g.last = now
		return
	}
	g.carry += now.Sub(g.last)
	g.last = now
	secs := int(g.carry / time.Second)
	if secs <= 0 {
		return
	}
	g.carry -= time.Duration(secs) * time.Second
	if next, err := g.st.AdvanceClock(secs); err == nil {
		g.st = next
	}
}

func (g *localGame) run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	g.show(out)
	for !g.st.Status.IsTerminal() {
		if ctx.Err() != nil {
			return nil
		}
		g.charge()
		fmt.Fprintf(out, "%s> ", g.st.Position.SideToMove)
		if !sc.Scan() {
			return sc.Err()
		}
		g.charge()
		quit, err := g.exec(sc.Text(), out)
		if quit {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, g.describe(err))
		}
	}
	return nil
}

// exec applies one command line. It reports quit for "quit"/"exit".
func (g *localGame) exec(line string, out io.Writer) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}
	var (
		next session.GameState
		err  error
	)
	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(out, "moves: e2e4 | e2 e4 | e7e8q   other: promote <piece>, targets <sq>, log, fen, resign, quit")
		return false, nil
	case "log":
		for _, l := range session.MovePairs(g.st.MoveLog) {
			fmt.Fprintln(out, l)
		}
		return false, nil
	case "fen":
		fmt.Fprintln(out, g.st.Position.FEN())
		return false, nil
	case "targets":
		if len(fields) < 2 {
			return false, errors.New("usage: targets <square>")
		}
		sq, err := rules.ParseSquare(fields[1])
		if err != nil {
			return false, err
		}
		marks := rules.LegalTargets(g.st.Position, sq)
		drawBoard(out, g.st.Position.Board, g.flip, append(marks, sq)...)
		return false, nil
	case "resign":
		next, err = g.st.ResignAs(g.mover())
	case "promote":
		if len(fields) < 2 {
			return false, errors.New("usage: promote <q|r|b|n>")
		}
		kind, perr := rules.ParseKind(fields[1])
		if perr != nil {
			return false, perr
		}
		next, err = g.st.SubmitPromotionChoice(g.mover(), kind)
	default:
		next, err = g.move(fields)
	}
	if err != nil {
		return false, err
	}
	g.st = next
	obslog.L().Debug("local_transition", zap.Int64("version", g.st.Version), zap.String("status", string(g.st.Status)))
	g.show(out)
	return false, nil
}

// move accepts "e2e4", "e2-e4", "e2 e4" and a trailing promotion letter.
func (g *localGame) move(fields []string) (session.GameState, error) {
	raw := strings.ReplaceAll(strings.Join(fields, ""), "-", "")
	if len(raw) != 4 && len(raw) != 5 {
		return g.st, fmt.Errorf("unrecognised command %q (try help)", strings.Join(fields, " "))
	}
	from, err := rules.ParseSquare(raw[:2])
	if err != nil {
		return g.st, err
	}
	to, err := rules.ParseSquare(raw[2:4])
	if err != nil {
		return g.st, err
	}
	id := g.mover()
	next, err := g.st.SubmitMove(id, from, to)
	if err != nil || len(raw) == 4 || !next.HasPendingPromotion() {
		return next, err
	}
	kind, err := rules.ParseKind(raw[4:])
	if err != nil {
		return g.st, err
	}
	return next.SubmitPromotionChoice(id, kind)
}

func (g *localGame) show(out io.Writer) {
	var marks []rules.Square
	switch {
	case g.st.HasPendingPromotion():
		marks = []rules.Square{g.st.PendingFrom, g.st.PromotionPending}
	case len(g.st.MoveLog) > 0:
		last := g.st.MoveLog[len(g.st.MoveLog)-1]
		marks = []rules.Square{last.From, last.To}
	}
	fmt.Fprintln(out)
	drawBoard(out, g.st.Position.Board, g.flip, marks...)
	snap := g.st.Snapshot()
	fmt.Fprintln(out, g.cat.ClockLine(snap))
	fmt.Fprintln(out, g.cat.StatusLine(snap))
}

func (g *localGame) describe(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case session.KindIllegalMove:
			msg := g.cat.ErrorText("illegal_move", err.Error())
			if se.Reason != rules.ReasonNone {
				msg += " (" + se.Reason.String() + ")"
			}
			return msg
		case session.KindInvalidSeatBinding:
			return g.cat.ErrorText("invalid_seat_binding", err.Error())
		default:
			return g.cat.ErrorText("action_not_permitted", err.Error())
		}
	}
	return err.Error()
}
