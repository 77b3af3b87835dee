package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choretracker/choretracker/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewMemoryStore(WithMemoryClock(func() time.Time { return fixedNow }))
}

func seed(t *testing.T, s *Store) (*models.User, *models.Chore) {
	t.Helper()
	ctx := context.Background()

	user, err := s.Users.Create(ctx, &models.UserCreate{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	chore, err := s.Chores.Create(ctx, &models.ChoreCreate{Title: "Dishes", Cadence: models.CadenceDaily})
	require.NoError(t, err)
	return user, chore
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns increasing ids", func(t *testing.T) {
		s := newTestStore()

		a, err := s.Users.Create(ctx, &models.UserCreate{Name: "A", Email: "a@example.com"})
		require.NoError(t, err)
		b, err := s.Users.Create(ctx, &models.UserCreate{Name: "B", Email: "b@example.com"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, int64(2), b.ID)
		assert.Equal(t, fixedNow, a.CreatedAt)
	})

	t.Run("duplicate email rejected case-insensitively", func(t *testing.T) {
		s := newTestStore()

		_, err := s.Users.Create(ctx, &models.UserCreate{Name: "A", Email: "a@example.com"})
		require.NoError(t, err)
		_, err = s.Users.Create(ctx, &models.UserCreate{Name: "A2", Email: "A@Example.com"})

		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("get, list, update", func(t *testing.T) {
		s := newTestStore()
		u, _ := seed(t, s)

		got, err := s.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)

		byEmail, err := s.Users.GetByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		got.Name = "Alicia"
		updated, err := s.Users.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", updated.Name)

		users, err := s.Users.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Alicia", users[0].Name)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		s := newTestStore()
		u, _ := seed(t, s)

		u.Name = "mutated"

		got, err := s.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("update to another user's email", func(t *testing.T) {
		s := newTestStore()
		_, _ = seed(t, s)
		bob, err := s.Users.Create(ctx, &models.UserCreate{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		bob.Email = "alice@example.com"
		_, err = s.Users.Update(ctx, bob)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("missing user", func(t *testing.T) {
		s := newTestStore()

		_, err := s.Users.GetByID(ctx, 99)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.Users.Update(ctx, &models.User{ID: 99})
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		assert.ErrorIs(t, s.Users.Delete(ctx, 99), models.ErrUserNotFound)
	})
}

func TestMemoryChoreRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	c, err := s.Chores.Create(ctx, &models.ChoreCreate{Title: "Laundry", Cadence: models.CadenceWeekly})
	require.NoError(t, err)

	c.Cadence = models.CadenceMonthly
	updated, err := s.Chores.Update(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, models.CadenceMonthly, updated.Cadence)

	chores, err := s.Chores.List(ctx)
	require.NoError(t, err)
	assert.Len(t, chores, 1)

	require.NoError(t, s.Chores.Delete(ctx, c.ID))
	_, err = s.Chores.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrChoreNotFound)
}

func TestMemoryAssignmentRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create checks references", func(t *testing.T) {
		s := newTestStore()
		u, c := seed(t, s)

		_, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: 99, ChoreID: c.ID, DueAt: fixedNow.Add(time.Hour)})
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		_, err = s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: u.ID, ChoreID: 99, DueAt: fixedNow.Add(time.Hour)})
		assert.ErrorIs(t, err, models.ErrChoreNotFound)

		a, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: u.ID, ChoreID: c.ID, DueAt: fixedNow.Add(time.Hour)})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, a.Status)
		assert.Nil(t, a.CompletedAt)
	})

	t.Run("filters", func(t *testing.T) {
		s := newTestStore()
		u, c := seed(t, s)
		other, err := s.Users.Create(ctx, &models.UserCreate{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		for _, uid := range []int64{u.ID, other.ID, u.ID} {
			_, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: uid, ChoreID: c.ID, DueAt: fixedNow.Add(time.Hour)})
			require.NoError(t, err)
		}

		all, err := s.Assignments.List(ctx, models.AssignmentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := s.Assignments.List(ctx, models.AssignmentFilter{UserID: &u.ID})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Less(t, mine[0].ID, mine[1].ID)

		status := models.StatusCompleted
		done, err := s.Assignments.List(ctx, models.AssignmentFilter{Status: &status})
		require.NoError(t, err)
		assert.Empty(t, done)
	})

	t.Run("overdue and statistics", func(t *testing.T) {
		s := newTestStore()
		u, c := seed(t, s)

		mk := func(due time.Time) *models.Assignment {
			a, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: u.ID, ChoreID: c.ID, DueAt: due})
			require.NoError(t, err)
			return a
		}
		late := mk(fixedNow.Add(-2 * time.Hour))
		lateDone := mk(fixedNow.Add(-time.Hour))
		_ = mk(fixedNow.Add(time.Hour))

		lateDone.Transition(models.StatusCompleted, fixedNow)
		_, err := s.Assignments.Update(ctx, lateDone)
		require.NoError(t, err)

		overdue, err := s.Assignments.ListOverdue(ctx, fixedNow)
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, late.ID, overdue[0].ID)

		stats, err := s.Assignments.Statistics(ctx, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalAssignments)
		assert.Equal(t, int64(1), stats.CompletedAssignments)
		assert.Equal(t, int64(2), stats.PendingAssignments)
		assert.Equal(t, int64(1), stats.OverdueAssignments)
		assert.Equal(t, 33.33, stats.CompletionRate)
	})

	t.Run("user delete cascades", func(t *testing.T) {
		s := newTestStore()
		u, c := seed(t, s)
		a, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: u.ID, ChoreID: c.ID, DueAt: fixedNow.Add(time.Hour)})
		require.NoError(t, err)

		require.NoError(t, s.Users.Delete(ctx, u.ID))

		_, err = s.Assignments.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
	})

	t.Run("chore delete cascades", func(t *testing.T) {
		s := newTestStore()
		u, c := seed(t, s)
		a, err := s.Assignments.Create(ctx, &models.AssignmentCreate{UserID: u.ID, ChoreID: c.ID, DueAt: fixedNow.Add(time.Hour)})
		require.NoError(t, err)

		require.NoError(t, s.Chores.Delete(ctx, c.ID))

		_, err = s.Assignments.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		s := newTestStore()
		assert.ErrorIs(t, s.Assignments.Delete(ctx, 1), models.ErrAssignmentNotFound)
		_, err := s.Assignments.Update(ctx, &models.Assignment{ID: 1})
		assert.ErrorIs(t, err, models.ErrAssignmentNotFound)
	})
}

func TestMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	_, c := seed(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Chores.Create(ctx, &models.ChoreCreate{Title: "T", Cadence: models.CadenceOnce})
			_, _ = s.Chores.GetByID(ctx, c.ID)
			_, _ = s.Chores.List(ctx)
		}(i)
	}
	wg.Wait()

	chores, err := s.Chores.List(ctx)
	require.NoError(t, err)
	assert.Len(t, chores, 51)
}

func TestStore_HealthAndClose(t *testing.T) {
	s := newTestStore()

	assert.NoError(t, s.HealthCheck(context.Background()))
	assert.Equal(t, "memory", s.Backend)
	assert.NotPanics(t, s.Close)
}
