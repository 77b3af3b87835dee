package repository

import (
	"context"
	"time"

	"github.com/choretracker/choretracker/internal/cache"
	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/pkg/logger"
)

// WithStatsCache returns a copy of store whose statistics are read through
// statsCache. Every write that can change the aggregate drops the cached
// value. Cache failures are logged and never fail the call.
func WithStatsCache(store *Store, statsCache cache.StatsCacher, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	inv := &invalidator{cache: statsCache, log: log}

	cached := *store
	cached.Users = &cachedUserRepository{UserRepository: store.Users, inv: inv}
	cached.Chores = &cachedChoreRepository{ChoreRepository: store.Chores, inv: inv}
	cached.Assignments = NewCachedAssignmentRepository(store.Assignments, statsCache, log)
	return &cached
}

type invalidator struct {
	cache cache.StatsCacher
	log   *logger.Logger
}

func (i *invalidator) invalidate(ctx context.Context) {
	if err := i.cache.Invalidate(ctx); err != nil {
		i.log.Warn("failed to invalidate statistics cache", "error", err)
	}
}

// cachedUserRepository invalidates statistics when a user delete cascades.
type cachedUserRepository struct {
	UserRepository
	inv *invalidator
}

func (r *cachedUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.inv.invalidate(ctx)
	return nil
}

// cachedChoreRepository invalidates statistics when a chore delete cascades.
type cachedChoreRepository struct {
	ChoreRepository
	inv *invalidator
}

func (r *cachedChoreRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ChoreRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.inv.invalidate(ctx)
	return nil
}

// CachedAssignmentRepository wraps an AssignmentRepository with a
// statistics cache. Reads other than Statistics go straight to the
// underlying repository.
type CachedAssignmentRepository struct {
	AssignmentRepository
	inv *invalidator
}

// NewCachedAssignmentRepository creates a new cached assignment repository.
func NewCachedAssignmentRepository(repo AssignmentRepository, statsCache cache.StatsCacher, log *logger.Logger) *CachedAssignmentRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedAssignmentRepository{
		AssignmentRepository: repo,
		inv:                  &invalidator{cache: statsCache, log: log},
	}
}

// Create stores the assignment and drops the cached aggregate.
func (c *CachedAssignmentRepository) Create(ctx context.Context, create *models.AssignmentCreate) (*models.Assignment, error) {
	a, err := c.AssignmentRepository.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	c.inv.invalidate(ctx)
	return a, nil
}

// Update persists the assignment and drops the cached aggregate.
func (c *CachedAssignmentRepository) Update(ctx context.Context, a *models.Assignment) (*models.Assignment, error) {
	updated, err := c.AssignmentRepository.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	c.inv.invalidate(ctx)
	return updated, nil
}

// Delete removes the assignment and drops the cached aggregate.
func (c *CachedAssignmentRepository) Delete(ctx context.Context, id int64) error {
	if err := c.AssignmentRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.inv.invalidate(ctx)
	return nil
}

// Statistics checks the cache first then falls back to the repository.
func (c *CachedAssignmentRepository) Statistics(ctx context.Context, now time.Time) (*models.Statistics, error) {
	if stats, err := c.inv.cache.Get(ctx); err == nil {
		return stats, nil
	}

	stats, err := c.AssignmentRepository.Statistics(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := c.inv.cache.Set(ctx, stats); err != nil {
		c.inv.log.Warn("failed to cache statistics", "error", err)
	}
	return stats, nil
}
