package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/duelchess/pkg/chessdto"
)

// MemoryRecorder keeps finished games in process; used when no database is
// configured.
type MemoryRecorder struct {
	mu    sync.RWMutex
	games map[string]chessdto.FinishedGame
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{games: make(map[string]chessdto.FinishedGame)}
}

func (m *MemoryRecorder) SaveResult(ctx context.Context, r Result) error {
	g, err := Finish(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[g.GameID]; exists {
		return ErrDuplicateGame
	}
	m.games[g.GameID] = g
	return nil
}

func (m *MemoryRecorder) Recent(ctx context.Context, limit int) ([]chessdto.FinishedGame, error) {
	m.mu.RLock()
	items := make([]chessdto.FinishedGame, 0, len(m.games))
	for _, g := range m.games {
		items = append(items, g)
	}
	m.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].GameID > items[j].GameID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
