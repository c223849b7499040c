package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-activation/models"
	"patient-activation/storage"
	"patient-activation/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s := NewSQLStore(db, SQLite, "")
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestSQLStore_Contract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestSQLStore_EnsureSchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, storagetest.NewInsert("Log glucose"))
	require.NoError(t, err)

	require.NoError(t, s.EnsureSchema(ctx))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLStore_MissingTableIsUnavailable(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	s := NewSQLStore(db, SQLite, "")

	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = s.Get(context.Background(), "any")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.db.Close())

	_, err := s.Create(context.Background(), storagetest.NewInsert("Log glucose"))
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Error(t, s.Ping(context.Background()))
}

func TestSQLStore_BuildSetClause(t *testing.T) {
	patch := models.ObjectivePatch{
		Title:      models.Some("Walk"),
		Priority:   models.Some(models.PriorityLow),
		TargetDate: models.Some("2024-09-01"),
	}

	pg := NewSQLStore(nil, Postgres, "")
	clause, params := pg.buildSetClause(patch)
	assert.Equal(t, "title = $1, priority = $2, target_date = $3", clause)
	assert.Equal(t, []interface{}{"Walk", "low", "2024-09-01"}, params)

	lite := NewSQLStore(nil, SQLite, "")
	clause, _ = lite.buildSetClause(patch)
	assert.Equal(t, "title = ?, priority = ?, target_date = ?", clause)
}

func TestSQLStore_CustomTable(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db, SQLite, "objectives_staging")
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))

	created, err := s.Create(ctx, storagetest.NewInsert("Log glucose"))
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objectives_staging WHERE id = ?", created.ID).Scan(&count))
	assert.Equal(t, 1, count)
}
