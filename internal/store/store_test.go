package store

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexshd/synergy"
	"github.com/alexshd/synergy/internal/dataset"
)

func referenceRun(t *testing.T) Run {
	t.Helper()
	d := dataset.Reference()
	res, err := d.Analyze()
	require.NoError(t, err)
	return NewRun(d, res)
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	first := referenceRun(t)
	second := referenceRun(t)
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Dataset.Counts, got.Dataset.Counts)
	assert.Equal(t, first.Result.Validation, got.Result.Validation)
	assert.Equal(t, first.Result.Total, got.Result.Total)
	require.Len(t, got.Result.Regions, len(first.Result.Regions))
	require.Len(t, got.Result.TValues, len(first.Result.TValues))
	for i := range first.Result.TValues {
		assert.Equal(t, first.Result.TValues[i].Combination, got.Result.TValues[i].Combination)
		assert.Equal(t, first.Result.TValues[i].TValue, got.Result.TValues[i].TValue)
	}
	assert.NoError(t, synergy.Verify(got.Result, synergy.DefaultVerifyConfig()))

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := referenceRun(t)
		ids = append(ids, run.ID)
		require.NoError(t, s.Save(ctx, run))
	}

	// Re-saving does not move a run.
	again, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, again))

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	run := referenceRun(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := run
			r.ID = uuid.New()
			assert.NoError(t, s.Save(ctx, r))
			_, err := s.Get(ctx, r.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 16)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	assert.ErrorIs(t, s.Save(ctx, referenceRun(t)), context.Canceled)
}

// TestPostgresStore runs against a live database named by
// SYNERGY_TEST_DATABASE_URL (read from .env when present).
func TestPostgresStore(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		_ = godotenv.Load(".env")
	}
	url := os.Getenv("SYNERGY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SYNERGY_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.InitSchema(ctx))
	exerciseStore(t, s)
}
