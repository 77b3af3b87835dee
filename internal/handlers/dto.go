package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/choretracker/choretracker/internal/models"
)

// UserCreateRequest is the body of POST /users.
type UserCreateRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,strict_email"`
}

func (r UserCreateRequest) toModel() models.UserCreate {
	return models.UserCreate{Name: r.Name, Email: r.Email}
}

// UserUpdateRequest is the body of PUT /users/{id}. Absent fields are left
// unchanged.
type UserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,strict_email"`
}

func (r UserUpdateRequest) toModel() models.UserUpdate {
	return models.UserUpdate{Name: r.Name, Email: r.Email}
}

// ChoreCreateRequest is the body of POST /chores.
type ChoreCreateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Cadence string `json:"cadence" validate:"required,max=50"`
}

func (r ChoreCreateRequest) toModel() models.ChoreCreate {
	return models.ChoreCreate{Title: r.Title, Cadence: models.Cadence(r.Cadence)}
}

// ChoreUpdateRequest is the body of PUT /chores/{id}.
type ChoreUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Cadence *string `json:"cadence" validate:"omitempty,max=50"`
}

func (r ChoreUpdateRequest) toModel() models.ChoreUpdate {
	upd := models.ChoreUpdate{Title: r.Title}
	if r.Cadence != nil {
		c := models.Cadence(*r.Cadence)
		upd.Cadence = &c
	}
	return upd
}

// AssignmentCreateRequest is the body of POST /assignments.
type AssignmentCreateRequest struct {
	UserID  int64      `json:"user_id" validate:"required,gt=0"`
	ChoreID int64      `json:"chore_id" validate:"required,gt=0"`
	DueAt   *Timestamp `json:"due_at" validate:"required"`
}

func (r AssignmentCreateRequest) toModel() models.AssignmentCreate {
	return models.AssignmentCreate{UserID: r.UserID, ChoreID: r.ChoreID, DueAt: r.DueAt.Time()}
}

// AssignmentUpdateRequest is the body of PUT /assignments/{id}.
type AssignmentUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// StatisticsResponse wraps the assignment aggregate.
type StatisticsResponse struct {
	Statistics *models.Statistics `json:"statistics"`
}

// timestampLayouts are tried in order. Layouts without an offset are read
// as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// TimestampError reports a due date that could not be parsed.
type TimestampError struct {
	Value string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("due_at: invalid datetime format %q", e.Value)
}

// Timestamp accepts ISO-8601 strings with or without an offset, and unix
// seconds.
type Timestamp time.Time

// Time returns the timestamp in UTC.
func (t *Timestamp) Time() time.Time {
	if t == nil {
		return time.Time{}
	}
	return time.Time(*t).UTC()
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, &TimestampError{Value: s}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ts, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		*t = Timestamp(ts)
		return nil
	}

	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return &TimestampError{Value: string(data)}
	}
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * 1e9)
	*t = Timestamp(time.Unix(whole, nanos).UTC())
	return nil
}
