package notation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/duelchess/internal/rules"
)

func TestReplaySAN(t *testing.T) {
	line, err := Replay("", []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if diff := cmp.Diff([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, line.SAN); diff != "" {
		t.Fatalf("san (-want +got):\n%s", diff)
	}
	if line.ECO == "" || !strings.Contains(strings.ToLower(line.Opening), "ruy lopez") {
		t.Fatalf("opening = %q %q", line.ECO, line.Opening)
	}
}

func TestReplayRejectsIllegal(t *testing.T) {
	if _, err := Replay("", []string{"e2e5"}); err == nil {
		t.Fatalf("expected error for e2e5")
	}
}

func TestSANPromotionFromFEN(t *testing.T) {
	san, err := SAN("8/4P3/8/8/8/8/k7/4K3 w - - 0 40", "e7e8n")
	if err != nil {
		t.Fatalf("SAN: %v", err)
	}
	if san != "e8=N" {
		t.Fatalf("san = %q", san)
	}
}

// Random games played by the rules package must replay cleanly and land on
// the same placement and side to move.
func TestRulesAgreeWithReplay(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for game := 0; game < 20; game++ {
		pos := rules.NewPosition()
		var ucis []string
		for ply := 0; ply < 40; ply++ {
			moves := rules.LegalMoves(pos)
			if len(moves) == 0 {
				break
			}
			mv := moves[rng.Intn(len(moves))]
			next, eff, err := rules.Apply(pos, mv.From, mv.To)
			if err != nil {
				t.Fatalf("apply %s: %v", mv, err)
			}
			uci := mv.From.String() + mv.To.String()
			if eff.PromotionPending {
				if next, err = rules.Promote(next, mv.To, rules.Queen); err != nil {
					t.Fatalf("promote: %v", err)
				}
				uci += "q"
			}
			ucis = append(ucis, uci)
			pos = next
		}
		line, err := Replay("", ucis)
		if err != nil {
			t.Fatalf("game %d: %v", game, err)
		}
		want := strings.Fields(pos.FEN())[:2]
		got := strings.Fields(line.FEN)[:2]
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("game %d fen (-rules +replay):\n%s", game, diff)
		}
	}
}
