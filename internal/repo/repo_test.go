package repo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homeolab/homeoagent/internal/model"
	appErr "github.com/homeolab/homeoagent/internal/pkg/errors"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, ApplyMigrations(db))
	return db
}

func TestEmbeddingCacheRepo_RoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewEmbeddingCacheRepo(db)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "m", "QUERY", "hash")
	require.NoError(t, err)
	require.False(t, ok)

	item := &model.EmbeddingCache{
		ModelName:   "m",
		TaskType:    "QUERY",
		ContentHash: "hash",
		Embedding:   []float32{0.5, -0.25, 1},
		Ctime:       time.Now().Unix(),
	}
	require.NoError(t, repo.Save(ctx, item))

	values, ok, err := repo.Get(ctx, "m", "QUERY", "hash")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, item.Embedding, values)

	// Upsert replaces the stored vector.
	item.Embedding = []float32{9}
	require.NoError(t, repo.Save(ctx, item))
	values, ok, err = repo.Get(ctx, "m", "QUERY", "hash")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float32{9}, values)
}

func TestEmbeddingCacheRepo_DeleteBefore(t *testing.T) {
	db := testDB(t)
	repo := NewEmbeddingCacheRepo(db)
	ctx := context.Background()

	old := &model.EmbeddingCache{ModelName: "m", TaskType: "Q", ContentHash: "old", Embedding: []float32{1}, Ctime: 100}
	fresh := &model.EmbeddingCache{ModelName: "m", TaskType: "Q", ContentHash: "fresh", Embedding: []float32{2}, Ctime: 200}
	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, fresh))

	deleted, err := repo.DeleteBefore(ctx, 150)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, ok, err := repo.Get(ctx, "m", "Q", "old")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = repo.Get(ctx, "m", "Q", "fresh")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIntakeRepo_SaveGetList(t *testing.T) {
	db := testDB(t)
	repo := NewIntakeRepo(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	intake := &model.PatientIntake{
		ID:           "intake-1",
		FullName:     "Jane Roe",
		MainSymptoms: "fatigue",
		Summary:      "PATIENT: Jane Roe",
		Ctime:        time.Now().Unix(),
	}
	require.NoError(t, repo.Save(ctx, intake))

	got, err := repo.Get(ctx, "intake-1")
	require.NoError(t, err)
	require.Equal(t, "Jane Roe", got.FullName)
	require.Equal(t, "fatigue", got.MainSymptoms)
	require.Equal(t, "PATIENT: Jane Roe", got.Summary)

	items, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
