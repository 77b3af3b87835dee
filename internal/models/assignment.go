package models

import (
	"strings"
	"time"
)

// AssignmentStatus is the progress of an assignment.
type AssignmentStatus string

// Assignment statuses
const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusOverdue    AssignmentStatus = "overdue"
)

// ParseAssignmentStatus normalizes s and checks it against the known statuses.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	st := AssignmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Assignment links a user to a chore with a due date.
type Assignment struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id"`
	ChoreID     int64            `json:"chore_id"`
	DueAt       time.Time        `json:"due_at"`
	Status      AssignmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at"`
}

// IsOverdue reports whether the assignment is past due and not completed.
func (a *Assignment) IsOverdue(now time.Time) bool {
	return a.Status != StatusCompleted && a.DueAt.Before(now)
}

// Transition applies a status change at now. A past-due assignment that is
// not being completed becomes overdue regardless of the requested status.
// Completing stamps CompletedAt; any other status clears it.
func (a *Assignment) Transition(requested AssignmentStatus, now time.Time) {
	status := requested
	if status != StatusCompleted && a.DueAt.Before(now) {
		status = StatusOverdue
	}

	a.Status = status
	if status == StatusCompleted {
		completedAt := now
		a.CompletedAt = &completedAt
	} else {
		a.CompletedAt = nil
	}
}

// AssignmentCreate holds the data needed to create an assignment.
type AssignmentCreate struct {
	UserID  int64
	ChoreID int64
	DueAt   time.Time
}

// Validate checks that the due date lies after now.
func (c *AssignmentCreate) Validate(now time.Time) error {
	if !c.DueAt.After(now) {
		return ErrDueDateNotFuture
	}
	return nil
}

// AssignmentFilter narrows an assignment listing. Nil fields match everything.
type AssignmentFilter struct {
	UserID  *int64
	ChoreID *int64
	Status  *AssignmentStatus
}

// Matches reports whether a satisfies every set field of the filter.
func (f AssignmentFilter) Matches(a *Assignment) bool {
	if f.UserID != nil && a.UserID != *f.UserID {
		return false
	}
	if f.ChoreID != nil && a.ChoreID != *f.ChoreID {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	return true
}
