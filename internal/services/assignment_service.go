package services

import (
	"context"
	"errors"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/repository"
)

// AssignmentService defines the interface for assignment operations.
type AssignmentService interface {
	Create(ctx context.Context, in models.AssignmentCreate) (*models.Assignment, error)
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Assignment, error)
	ListForChore(ctx context.Context, choreID int64) ([]*models.Assignment, error)
	ListOverdue(ctx context.Context) ([]*models.Assignment, error)
	UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) (*models.Assignment, error)
	Complete(ctx context.Context, id int64) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*models.Statistics, error)
}

// AssignmentServiceImpl implements AssignmentService.
type AssignmentServiceImpl struct {
	base
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	chores      repository.ChoreRepository
}

// NewAssignmentService creates a new AssignmentService instance.
func NewAssignmentService(store *repository.Store, opts ...Option) *AssignmentServiceImpl {
	return &AssignmentServiceImpl{
		base:        newBase(opts),
		assignments: store.Assignments,
		users:       store.Users,
		chores:      store.Chores,
	}
}

// referenceError turns a missing referenced entity into a business-rule error.
func referenceError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return problem.Wrap(problem.KindBusinessRule, err)
	}
	return err
}

// Create checks that the user and chore exist and the due date lies ahead,
// in that order, then stores a pending assignment.
func (s *AssignmentServiceImpl) Create(ctx context.Context, in models.AssignmentCreate) (*models.Assignment, error) {
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, referenceError(err)
	}
	if _, err := s.chores.GetByID(ctx, in.ChoreID); err != nil {
		return nil, referenceError(err)
	}
	if err := in.Validate(s.now()); err != nil {
		return nil, classify(err)
	}

	in.DueAt = in.DueAt.UTC()
	a, err := s.assignments.Create(ctx, &in)
	if err != nil {
		return nil, referenceError(err)
	}
	metrics.RecordEntityCreated("assignment")
	return a, nil
}

// Get returns the assignment with id.
func (s *AssignmentServiceImpl) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	return s.assignments.GetByID(ctx, id)
}

// List returns assignments matching filter.
func (s *AssignmentServiceImpl) List(ctx context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error) {
	return s.assignments.List(ctx, filter)
}

// ListForUser returns the assignments of an existing user.
func (s *AssignmentServiceImpl) ListForUser(ctx context.Context, userID int64) ([]*models.Assignment, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.assignments.List(ctx, models.AssignmentFilter{UserID: &userID})
}

// ListForChore returns the assignments of an existing chore.
func (s *AssignmentServiceImpl) ListForChore(ctx context.Context, choreID int64) ([]*models.Assignment, error) {
	if _, err := s.chores.GetByID(ctx, choreID); err != nil {
		return nil, err
	}
	return s.assignments.List(ctx, models.AssignmentFilter{ChoreID: &choreID})
}

// ListOverdue returns non-completed assignments that are past due.
func (s *AssignmentServiceImpl) ListOverdue(ctx context.Context) ([]*models.Assignment, error) {
	return s.assignments.ListOverdue(ctx, s.now())
}

// UpdateStatus changes the status. A past-due assignment that is not being
// completed is stored as overdue.
func (s *AssignmentServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) (*models.Assignment, error) {
	if !status.Valid() {
		return nil, classify(models.ErrInvalidStatus)
	}

	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Transition(status, s.now().UTC())
	updated, err := s.assignments.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	metrics.RecordAssignmentTransition(string(updated.Status))
	return updated, nil
}

// Complete marks the assignment completed.
func (s *AssignmentServiceImpl) Complete(ctx context.Context, id int64) (*models.Assignment, error) {
	return s.UpdateStatus(ctx, id, models.StatusCompleted)
}

// Delete removes the assignment.
func (s *AssignmentServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.assignments.Delete(ctx, id)
}

// Statistics returns the assignment aggregate as of now.
func (s *AssignmentServiceImpl) Statistics(ctx context.Context) (*models.Statistics, error) {
	return s.assignments.Statistics(ctx, s.now())
}
