// Package storagetest holds the behavioural suite every storage.Store backend runs.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-activation/models"
	"patient-activation/storage"
)

// NewInsert returns a valid insert payload; opts adjust it.
func NewInsert(title string, opts ...func(*models.InsertObjective)) models.InsertObjective {
	in := models.InsertObjective{
		Title:      title,
		Category:   models.CategoryMonitoring,
		Status:     models.StatusPending,
		Priority:   models.PriorityMedium,
		TargetDate: "2024-03-20",
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func WithTargetDate(date string) func(*models.InsertObjective) {
	return func(in *models.InsertObjective) { in.TargetDate = date }
}

func WithStatus(s models.Status) func(*models.InsertObjective) {
	return func(in *models.InsertObjective) { in.Status = s }
}

// RunContract runs the suite. newStore must return an empty store for each call.
func RunContract(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("CreateReturnsInputWithID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := NewInsert("Log glucose")
		created, err := s.Create(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, in.WithID(created.ID), created)

		fetched, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
	})

	t.Run("CreateAssignsDistinctIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			o, err := s.Create(ctx, NewInsert("Objective"))
			require.NoError(t, err)
			assert.False(t, seen[o.ID], "duplicate id %s", o.ID)
			seen[o.ID] = true
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(context.Background(), "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)

		list, err := s.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("ListOrdersByTargetDate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.Create(ctx, NewInsert("A", WithTargetDate("2024-05-01")))
		require.NoError(t, err)
		b, err := s.Create(ctx, NewInsert("B", WithTargetDate("2024-01-01")))
		require.NoError(t, err)

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Objective{b, a}, list)
	})

	t.Run("ListIsNonDecreasingForAnyInsertionOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, date := range []string{"2024-07-04", "2023-12-31", "2024-07-04", "2024-01-15", "2025-02-01", "2024-01-14"} {
			_, err := s.Create(ctx, NewInsert("Objective "+date, WithTargetDate(date)))
			require.NoError(t, err)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 6)
		assert.True(t, sort.SliceIsSorted(list, func(i, j int) bool {
			return list[i].TargetDate < list[j].TargetDate
		}))
	})

	t.Run("UpdateEmptyPatchReturnsUnchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, NewInsert("Log glucose"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, models.ObjectivePatch{})
		require.NoError(t, err)
		assert.Equal(t, created, updated)
	})

	t.Run("UpdateEmptyPatchNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Update(context.Background(), "nonexistent-id", models.ObjectivePatch{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Update(context.Background(), "nonexistent-id", models.ObjectivePatch{
			Status: models.Some(models.StatusCompleted),
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateChangesOnlyPresentFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, NewInsert("Log glucose"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, models.ObjectivePatch{
			Status: models.Some(models.StatusCompleted),
		})
		require.NoError(t, err)

		want := created
		want.Status = models.StatusCompleted
		assert.Equal(t, want, updated)

		fetched, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, fetched)
	})

	t.Run("UpdateAllFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, NewInsert("Log glucose"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, models.ObjectivePatch{
			Title:      models.Some("Walk daily"),
			Category:   models.Some(models.CategoryPhysicalTherapy),
			Status:     models.Some(models.StatusInProgress),
			Priority:   models.Some(models.PriorityHigh),
			TargetDate: models.Some("2024-06-30"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.Objective{
			ID:         created.ID,
			Title:      "Walk daily",
			Category:   models.CategoryPhysicalTherapy,
			Status:     models.StatusInProgress,
			Priority:   models.PriorityHigh,
			TargetDate: "2024-06-30",
		}, updated)
	})

	t.Run("UpdateLeavesOtherRecordsAlone", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.Create(ctx, NewInsert("A"))
		require.NoError(t, err)
		b, err := s.Create(ctx, NewInsert("B"))
		require.NoError(t, err)

		_, err = s.Update(ctx, a.ID, models.ObjectivePatch{Title: models.Some("A2")})
		require.NoError(t, err)

		fetched, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, fetched)
	})

	t.Run("DeleteThenGetNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, NewInsert("Log glucose"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created.ID))

		_, err = s.Get(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, created.ID), storage.ErrNotFound)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		s := newStore(t)

		assert.ErrorIs(t, s.Delete(context.Background(), "nonexistent-id"), storage.ErrNotFound)
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 10
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Create(ctx, NewInsert("Concurrent"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, n)
	})
}
