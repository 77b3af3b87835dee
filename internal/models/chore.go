package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxChoreTitleLength is the longest accepted chore title, in characters.
const MaxChoreTitleLength = 200

// Cadence is how often a chore recurs.
type Cadence string

// Supported cadences
const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceYearly  Cadence = "yearly"
	CadenceOnce    Cadence = "once"
)

// Cadences lists every supported cadence.
var Cadences = []Cadence{CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly, CadenceOnce}

// ParseCadence normalizes s and checks it against the supported cadences.
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCadence
	}
	return c, nil
}

// Valid reports whether c is a supported cadence.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly, CadenceOnce:
		return true
	}
	return false
}

// Chore is a recurring household task.
type Chore struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Cadence   Cadence   `json:"cadence"`
	CreatedAt time.Time `json:"created_at"`
}

// ChoreCreate holds the data needed to create a chore.
type ChoreCreate struct {
	Title   string
	Cadence Cadence
}

// ChoreUpdate holds a partial chore update. Nil fields are left unchanged.
type ChoreUpdate struct {
	Title   *string
	Cadence *Cadence
}

// Validate checks the create payload after sanitization.
func (c *ChoreCreate) Validate() error {
	if err := validateChoreTitle(c.Title); err != nil {
		return err
	}
	if !c.Cadence.Valid() {
		return ErrInvalidCadence
	}
	return nil
}

// Validate checks the update payload after sanitization.
func (u *ChoreUpdate) Validate() error {
	if u.Title != nil {
		if err := validateChoreTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Cadence != nil && !u.Cadence.Valid() {
		return ErrInvalidCadence
	}
	return nil
}

// Apply copies the set fields onto chore.
func (u *ChoreUpdate) Apply(chore *Chore) {
	if u.Title != nil {
		chore.Title = *u.Title
	}
	if u.Cadence != nil {
		chore.Cadence = *u.Cadence
	}
}

func validateChoreTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxChoreTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
