package services

import (
	"context"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/repository"
)

// ChoreService defines the interface for chore operations.
type ChoreService interface {
	Create(ctx context.Context, in models.ChoreCreate) (*models.Chore, error)
	Get(ctx context.Context, id int64) (*models.Chore, error)
	List(ctx context.Context) ([]*models.Chore, error)
	Update(ctx context.Context, id int64, in models.ChoreUpdate) (*models.Chore, error)
	Delete(ctx context.Context, id int64) error
}

// ChoreServiceImpl implements ChoreService.
type ChoreServiceImpl struct {
	base
	chores repository.ChoreRepository
}

// NewChoreService creates a new ChoreService instance.
func NewChoreService(chores repository.ChoreRepository, opts ...Option) *ChoreServiceImpl {
	return &ChoreServiceImpl{base: newBase(opts), chores: chores}
}

func (s *ChoreServiceImpl) cleanTitle(title string) string {
	return s.sanitizer.Sanitize(title, models.MaxChoreTitleLength)
}

// Create sanitizes the title, normalizes the cadence and stores a new chore.
func (s *ChoreServiceImpl) Create(ctx context.Context, in models.ChoreCreate) (*models.Chore, error) {
	cadence, err := models.ParseCadence(string(in.Cadence))
	if err != nil {
		return nil, classify(err)
	}
	create := models.ChoreCreate{Title: s.cleanTitle(in.Title), Cadence: cadence}
	if err := create.Validate(); err != nil {
		return nil, classify(err)
	}

	chore, err := s.chores.Create(ctx, &create)
	if err != nil {
		return nil, err
	}
	metrics.RecordEntityCreated("chore")
	return chore, nil
}

// Get returns the chore with id.
func (s *ChoreServiceImpl) Get(ctx context.Context, id int64) (*models.Chore, error) {
	return s.chores.GetByID(ctx, id)
}

// List returns every chore.
func (s *ChoreServiceImpl) List(ctx context.Context) ([]*models.Chore, error) {
	return s.chores.List(ctx)
}

// Update applies a partial update.
func (s *ChoreServiceImpl) Update(ctx context.Context, id int64, in models.ChoreUpdate) (*models.Chore, error) {
	var upd models.ChoreUpdate
	if in.Title != nil {
		title := s.cleanTitle(*in.Title)
		upd.Title = &title
	}
	if in.Cadence != nil {
		cadence, err := models.ParseCadence(string(*in.Cadence))
		if err != nil {
			return nil, classify(err)
		}
		upd.Cadence = &cadence
	}
	if err := upd.Validate(); err != nil {
		return nil, classify(err)
	}

	chore, err := s.chores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title == nil && upd.Cadence == nil {
		return chore, nil
	}

	upd.Apply(chore)
	return s.chores.Update(ctx, chore)
}

// Delete removes the chore and its assignments.
func (s *ChoreServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.chores.Delete(ctx, id)
}
