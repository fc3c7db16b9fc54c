package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryArchive keeps move logs in process memory.
type MemoryArchive struct {
	mu    sync.RWMutex
	games map[string][]MoveRecord
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{games: make(map[string][]MoveRecord)}
}

func (a *MemoryArchive) Record(_ context.Context, rec MoveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games[rec.GameID] = append(a.games[rec.GameID], rec)
	return nil
}

func (a *MemoryArchive) Truncate(_ context.Context, gameID string, fromPly int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.games[gameID][:0]
	for _, rec := range a.games[gameID] {
		if rec.Ply < fromPly {
			kept = append(kept, rec)
		}
	}
	a.games[gameID] = kept
	return nil
}

func (a *MemoryArchive) Moves(_ context.Context, gameID string) ([]MoveRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	recs, ok := a.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	out := append([]MoveRecord(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ply < out[j].Ply })
	return out, nil
}

func (a *MemoryArchive) Close(context.Context) error {
	return nil
}
