package services

import (
	"context"
	"errors"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/repository"
	"github.com/choretracker/choretracker/internal/security"
)

// UserService defines the interface for user operations.
type UserService interface {
	Create(ctx context.Context, in models.UserCreate) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, in models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	base
	users repository.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(users repository.UserRepository, opts ...Option) *UserServiceImpl {
	return &UserServiceImpl{base: newBase(opts), users: users}
}

func (s *UserServiceImpl) cleanName(name string) string {
	return s.sanitizer.Sanitize(name, models.MaxUserNameLength)
}

func normalizeEmail(email string) (string, error) {
	normalized, err := security.NormalizeEmail(email)
	if err != nil {
		return "", models.ErrInvalidEmail
	}
	return normalized, nil
}

// Create sanitizes and validates the input, then stores a new user.
func (s *UserServiceImpl) Create(ctx context.Context, in models.UserCreate) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, classify(err)
	}
	create := models.UserCreate{Name: s.cleanName(in.Name), Email: email}
	if err := create.Validate(); err != nil {
		return nil, classify(err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, classify(models.ErrEmailTaken)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	user, err := s.users.Create(ctx, &create)
	if err != nil {
		return nil, classify(err)
	}
	metrics.RecordEntityCreated("user")
	return user, nil
}

// Get returns the user with id.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns every user.
func (s *UserServiceImpl) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// Update applies a partial update. An email owned by another user is rejected.
func (s *UserServiceImpl) Update(ctx context.Context, id int64, in models.UserUpdate) (*models.User, error) {
	var upd models.UserUpdate
	if in.Name != nil {
		name := s.cleanName(*in.Name)
		upd.Name = &name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, classify(err)
		}
		upd.Email = &email
	}
	if err := upd.Validate(); err != nil {
		return nil, classify(err)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return user, nil
	}

	if upd.Email != nil {
		owner, err := s.users.GetByEmail(ctx, *upd.Email)
		switch {
		case err == nil && owner.ID != id:
			return nil, classify(models.ErrEmailTaken)
		case err != nil && !errors.Is(err, models.ErrNotFound):
			return nil, err
		}
	}

	upd.Apply(user)
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, classify(err)
	}
	return updated, nil
}

// Delete removes the user and its assignments.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
