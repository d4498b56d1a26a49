package battleship

import (
	"context"
	"sync"
	"time"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// Store persists matches. Load returns an error wrapping cerr.ErrNotFound for
// unknown ids and Create one wrapping cerr.ErrDuplicateID for taken ids. Implementations must hand out and keep independent copies so a
// match mutated but never saved leaves the stored state untouched.
type Store interface {
	Load(ctx context.Context, matchID string) (*Match, error)
	// Create stores a new match and never replaces an existing one.
	Create(ctx context.Context, m *Match) error
	Save(ctx context.Context, m *Match) error
	// StaleMatchIDs lists unfinished matches created before cutoff.
	StaleMatchIDs(ctx context.Context, cutoff time.Time) ([]string, error)
}

// MemoryStore keeps match snapshots in a map.
type MemoryStore struct {
	matches map[string]MatchSnapshot
	mu      sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]MatchSnapshot, 10),
	}
}

func (ms *MemoryStore) Load(_ context.Context, matchID string) (*Match, error) {
	ms.mu.RLock()
	snap, prs := ms.matches[matchID]
	ms.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrMatchNotExists(matchID)
	}

	return RestoreMatch(snap)
}

func (ms *MemoryStore) Create(_ context.Context, m *Match) error {
	snap := m.Snapshot()

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, prs := ms.matches[m.ID]; prs {
		return cerr.ErrMatchIDTaken(m.ID)
	}
	ms.matches[m.ID] = snap
	return nil
}

func (ms *MemoryStore) Save(_ context.Context, m *Match) error {
	snap := m.Snapshot()

	ms.mu.Lock()
	ms.matches[m.ID] = snap
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) StaleMatchIDs(_ context.Context, cutoff time.Time) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var ids []string
	for id, snap := range ms.matches {
		if !snap.Status.IsTerminal() && snap.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Delete drops finished matches that ended before cutoff and returns how
// many were removed.
func (ms *MemoryStore) Delete(cutoff time.Time) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	n := 0
	for id, snap := range ms.matches {
		if snap.Status.IsTerminal() && snap.EndedAt.Before(cutoff) {
			delete(ms.matches, id)
			n++
		}
	}
	return n
}
