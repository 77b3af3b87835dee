// Package services contains business logic.
package services

import (
	"errors"
	"time"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/security"
)

// Option configures a service.
type Option func(*base)

// base carries the collaborators shared by every service.
type base struct {
	now       func() time.Time
	sanitizer security.TextSanitizer
}

func newBase(opts []Option) base {
	b := base{
		now:       time.Now,
		sanitizer: security.NewDenylistSanitizer(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// WithSanitizer overrides the free-text sanitizer.
func WithSanitizer(s security.TextSanitizer) Option {
	return func(b *base) {
		b.sanitizer = s
	}
}

// validationErrors are model errors that surface as 422.
var validationErrors = []error{
	models.ErrEmptyName,
	models.ErrNameTooLong,
	models.ErrEmptyTitle,
	models.ErrTitleTooLong,
	models.ErrInvalidEmail,
	models.ErrInvalidCadence,
	models.ErrInvalidStatus,
}

// classify maps model errors onto problem categories. Not-found and
// unknown errors pass through for the normalizer to handle.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return problem.Wrap(problem.KindValidation, v)
		}
	}
	if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrDueDateNotFuture) {
		return problem.Wrap(problem.KindBusinessRule, err)
	}
	return err
}
