package sqlc

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

// captureArg matches any []byte argument and keeps it.
type captureArg struct {
	value []byte
}

func (c *captureArg) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if ok {
		c.value = b
	}
	return ok
}

func newMockStore(t *testing.T) (*MatchStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewMatchStore(New(db)), mock
}

func TestMatchStoreSaveLoad(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	createdAt := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	m := mb.NewMatch("p1", createdAt)
	require.NoError(t, m.Join("p2"))

	snapshot := &captureArg{}
	mock.ExpectExec(`INSERT INTO matches \(id, finished, snapshot, created_at\)`).
		WithArgs(m.ID, false, snapshot, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Save(ctx, m))

	mock.ExpectQuery(`SELECT snapshot FROM matches WHERE id = \$1`).
		WithArgs(m.ID).
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(snapshot.value))

	loaded, err := store.Load(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, mb.MatchStatusPlacingShips, loaded.Status)
	assert.Equal(t, []string{"p1", "p2"}, loaded.PlayerIDs())
	assert.True(t, loaded.CreatedAt.Equal(createdAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchStoreLoadMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT snapshot FROM matches WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}))

	_, err := store.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, cerr.ErrNotFound), "got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchStoreLoadCorrupt(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT snapshot FROM matches WHERE id = \$1`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow([]byte(`{"id":"abc","players":[]}`)))

	_, err := store.Load(context.Background(), "abc")
	assert.True(t, errors.Is(err, cerr.ErrValidation), "got: %v", err)
}

func TestMatchStoreStaleMatchIDs(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id FROM matches WHERE NOT finished AND created_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := store.StaleMatchIDs(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchStoreCreate(t *testing.T) {
	createdAt := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new id", func(t *testing.T) {
		store, mock := newMockStore(t)
		m := mb.NewMatch("p1", createdAt)

		mock.ExpectExec(`INSERT INTO matches .* ON CONFLICT \(id\) DO NOTHING`).
			WithArgs(m.ID, false, &captureArg{}, createdAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Create(context.Background(), m))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("taken id", func(t *testing.T) {
		store, mock := newMockStore(t)
		m := mb.NewMatch("p3", createdAt)

		mock.ExpectExec(`INSERT INTO matches .* ON CONFLICT \(id\) DO NOTHING`).
			WithArgs(m.ID, false, &captureArg{}, createdAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Create(context.Background(), m)
		assert.True(t, errors.Is(err, cerr.ErrDuplicateID), "got: %v", err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
