package msgcat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/park285/duelchess/pkg/chessdto"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("status.checkmate", map[string]any{"Winner": "Bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Checkmate. Bob wins." {
		t.Fatalf("got %q", got)
	}
	if _, err := c.Render("status.turn", map[string]any{}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("expected unknown template error")
	}
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.yaml", "status:\n  stalemate: \"Pat.\"\n")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.RenderOr("status.stalemate", nil, "x"); got != "Pat." {
		t.Fatalf("override = %q", got)
	}
	write("b.yml", "status:\n  stalemate: \"dup\"\n")
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestStatusLine(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	players := chessdto.Players{White: &chessdto.Player{ID: "w", Name: "Alice"}, Black: &chessdto.Player{ID: "b", Name: "Bob"}}
	cases := []struct {
		snap chessdto.Snapshot
		want string
	}{
		{chessdto.Snapshot{Code: "R1", Status: "waiting"}, "Waiting for an opponent to join R1."},
		{chessdto.Snapshot{Status: "active", CurrentPlayer: "black", Players: players}, "Bob (black) to move."},
		{chessdto.Snapshot{Status: "active", CurrentPlayer: "white", IsCheck: true, Players: players}, "Check! Alice (white) to move."},
		{chessdto.Snapshot{Status: "active", CurrentPlayer: "white", PromotionPending: "e8", Players: players}, "Alice (white) must choose a promotion piece for e8."},
		{chessdto.Snapshot{Status: "resigned", Winner: "white", Players: players}, "Bob resigned. Alice wins."},
		{chessdto.Snapshot{Status: "stalemate", Players: players}, "Stalemate. The game is drawn."},
	}
	for _, tc := range cases {
		if got := c.StatusLine(tc.snap); got != tc.want {
			t.Errorf("StatusLine(%s) = %q, want %q", tc.snap.Status, got, tc.want)
		}
	}
	if got := c.ClockLine(chessdto.Snapshot{WhiteTime: 600, BlackTime: 65}); got != "White 10:00 | Black 1:05" {
		t.Errorf("ClockLine = %q", got)
	}
}
