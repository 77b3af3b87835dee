package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUserNameLength is the longest accepted user name, in characters.
const MaxUserNameLength = 100

// User is a person chores are assigned to.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCreate holds the data needed to create a user.
type UserCreate struct {
	Name  string
	Email string
}

// UserUpdate holds a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Validate checks the create payload after sanitization.
func (c *UserCreate) Validate() error {
	return validateUserName(c.Name)
}

// Validate checks the update payload after sanitization.
func (u *UserUpdate) Validate() error {
	if u.Name != nil {
		return validateUserName(*u.Name)
	}
	return nil
}

// IsEmpty reports whether the update changes nothing.
func (u *UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}

// Apply copies the set fields onto user.
func (u *UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
}

func validateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return ErrNameTooLong
	}
	return nil
}
