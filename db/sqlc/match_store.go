package sqlc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

// MatchStore persists matches as JSON snapshots, one row per match.
type MatchStore struct {
	queries Querier
}

var _ mb.Store = (*MatchStore)(nil)

func NewMatchStore(queries Querier) *MatchStore {
	return &MatchStore{queries: queries}
}

func (ms *MatchStore) Load(ctx context.Context, matchID string) (*mb.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()

	raw, err := ms.queries.GetMatchSnapshot(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.ErrMatchNotExists(matchID)
		}
		return nil, err
	}

	var snap mb.MatchSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, cerr.ErrSnapshot(err.Error())
	}
	return mb.RestoreMatch(snap)
}

// Create inserts m and reports cerr.ErrDuplicateID when the id is taken.
func (ms *MatchStore) Create(ctx context.Context, m *mb.Match) error {
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()

	inserted, err := ms.queries.InsertMatch(ctx, InsertMatchParams{
		ID:        m.ID,
		Finished:  m.Status.IsTerminal(),
		Snapshot:  raw,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return err
	}
	if inserted == 0 {
		return cerr.ErrMatchIDTaken(m.ID)
	}
	return nil
}

func (ms *MatchStore) Save(ctx context.Context, m *mb.Match) error {
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()

	return ms.queries.UpsertMatch(ctx, UpsertMatchParams{
		ID:        m.ID,
		Finished:  m.Status.IsTerminal(),
		Snapshot:  raw,
		CreatedAt: m.CreatedAt,
	})
}

func (ms *MatchStore) StaleMatchIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()

	return ms.queries.ListStaleMatchIDs(ctx, cutoff)
}
