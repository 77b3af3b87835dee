// Package repository handles data persistence.
package repository

import (
	"context"
	"time"

	"github.com/choretracker/choretracker/internal/models"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create stores a new user. A taken email yields models.ErrEmailTaken.
	Create(ctx context.Context, create *models.UserCreate) (*models.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns every user ordered by ID.
	List(ctx context.Context) ([]*models.User, error)

	// Update persists name and email of an existing user.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes a user and its assignments.
	Delete(ctx context.Context, id int64) error
}

// ChoreRepository defines the interface for chore persistence operations.
type ChoreRepository interface {
	Create(ctx context.Context, create *models.ChoreCreate) (*models.Chore, error)
	GetByID(ctx context.Context, id int64) (*models.Chore, error)
	List(ctx context.Context) ([]*models.Chore, error)
	Update(ctx context.Context, chore *models.Chore) (*models.Chore, error)

	// Delete removes a chore and its assignments.
	Delete(ctx context.Context, id int64) error
}

// AssignmentRepository defines the interface for assignment persistence operations.
type AssignmentRepository interface {
	// Create stores a pending assignment.
	Create(ctx context.Context, create *models.AssignmentCreate) (*models.Assignment, error)

	GetByID(ctx context.Context, id int64) (*models.Assignment, error)

	// List returns assignments matching filter, ordered by ID.
	List(ctx context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error)

	// ListOverdue returns non-completed assignments due before now, earliest first.
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Assignment, error)

	// Update persists status and completion time.
	Update(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)

	Delete(ctx context.Context, id int64) error

	// Statistics aggregates every assignment as of now.
	Statistics(ctx context.Context, now time.Time) (*models.Statistics, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users       UserRepository
	Chores      ChoreRepository
	Assignments AssignmentRepository

	// Backend names the store for logs and readiness output.
	Backend string

	health func(ctx context.Context) error
	close  func()
}

// HealthCheck verifies the backing store is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health(ctx)
}

// Close releases the backing store.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
