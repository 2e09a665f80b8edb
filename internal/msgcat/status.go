package msgcat

import (
	"fmt"

	"github.com/park285/duelchess/pkg/chessdto"
)

// StatusLine describes a snapshot for people: whose turn, check, result.
func (c *Catalog) StatusLine(s chessdto.Snapshot) string {
	data := map[string]any{
		"Code":   s.Code,
		"Color":  s.CurrentPlayer,
		"Player": seatName(s.Players, s.CurrentPlayer),
		"Square": s.PromotionPending,
		"Winner": seatName(s.Players, s.Winner),
		"Loser":  seatName(s.Players, other(s.Winner)),
	}
	key := "status.turn"
	switch s.Status {
	case "waiting":
		key = "status.waiting"
	case "checkmate", "stalemate", "resigned", "draw":
		key = "status." + s.Status
	default:
		if s.PromotionPending != "" {
			key = "status.promotion"
		} else if s.IsCheck {
			key = "status.check"
		}
	}
	return c.RenderOr(key, data, s.Status)
}

// ClockLine formats both clocks as m:ss.
func (c *Catalog) ClockLine(s chessdto.Snapshot) string {
	data := map[string]any{"White": FormatClock(s.WhiteTime), "Black": FormatClock(s.BlackTime)}
	return c.RenderOr("clock.line", data, fmt.Sprintf("%s / %s", data["White"], data["Black"]))
}

// ErrorText is the human text for a DomainError code.
func (c *Catalog) ErrorText(code, fallback string) string {
	return c.RenderOr("error."+code, nil, fallback)
}

func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func seatName(p chessdto.Players, color string) string {
	var pl *chessdto.Player
	switch color {
	case "white":
		pl = p.White
	case "black":
		pl = p.Black
	}
	if pl == nil || pl.Name == "" {
		if color == "" {
			return ""
		}
		return color
	}
	return pl.Name
}

func other(color string) string {
	switch color {
	case "white":
		return "black"
	case "black":
		return "white"
	}
	return ""
}
