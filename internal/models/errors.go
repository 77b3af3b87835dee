// Package models contains domain models and entities.
package models

import "errors"

// ErrNotFound is matched by every entity-specific not-found error.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing entity. errors.Is(err, ErrNotFound) holds
// for every value of this type.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Entity lookup errors
var (
	ErrUserNotFound       error = &NotFoundError{Entity: "User"}
	ErrChoreNotFound      error = &NotFoundError{Entity: "Chore"}
	ErrAssignmentNotFound error = &NotFoundError{Entity: "Assignment"}
)

// ErrEmailTaken is returned when a user email collides with an existing one.
var ErrEmailTaken = errors.New("User with this email already exists")

// Validation errors
var (
	ErrEmptyName        = errors.New("Name cannot be empty")
	ErrNameTooLong      = errors.New("Name too long (max 100 characters)")
	ErrEmptyTitle       = errors.New("Title cannot be empty")
	ErrTitleTooLong     = errors.New("Title too long (max 200 characters)")
	ErrInvalidEmail     = errors.New("Invalid email format")
	ErrInvalidCadence   = errors.New("Invalid cadence. Allowed values: daily, weekly, monthly, yearly, once")
	ErrInvalidStatus    = errors.New("Invalid status. Allowed values: pending, in_progress, completed, overdue")
	ErrDueDateNotFuture = errors.New("Due date must be in the future")
)
