package sqlc

import (
	"context"
	"encoding/json"
	"time"
)

const getMatchSnapshot = `SELECT snapshot FROM matches WHERE id = $1`

func (q *Queries) GetMatchSnapshot(ctx context.Context, id string) (json.RawMessage, error) {
	row := q.db.QueryRowContext(ctx, getMatchSnapshot, id)
	var snapshot json.RawMessage
	err := row.Scan(&snapshot)
	return snapshot, err
}

const insertMatch = `INSERT INTO matches (id, finished, snapshot, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

type InsertMatchParams struct {
	ID        string
	Finished  bool
	Snapshot  json.RawMessage
	CreatedAt time.Time
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertMatch,
		arg.ID,
		arg.Finished,
		arg.Snapshot,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listStaleMatchIDs = `SELECT id FROM matches WHERE NOT finished AND created_at < $1`

func (q *Queries) ListStaleMatchIDs(ctx context.Context, createdAt time.Time) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listStaleMatchIDs, createdAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMatch = `INSERT INTO matches (id, finished, snapshot, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET finished = EXCLUDED.finished, snapshot = EXCLUDED.snapshot, updated_at = NOW()`

type UpsertMatchParams struct {
	ID        string
	Finished  bool
	Snapshot  json.RawMessage
	CreatedAt time.Time
}

func (q *Queries) UpsertMatch(ctx context.Context, arg UpsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatch,
		arg.ID,
		arg.Finished,
		arg.Snapshot,
		arg.CreatedAt,
	)
	return err
}
