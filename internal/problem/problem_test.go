package problem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 8, 30, 15, 123000000, time.FixedZone("EST", -5*3600))

func TestKind(t *testing.T) {
	tests := []struct {
		kind   Kind
		title  string
		status int
	}{
		{KindValidation, "Validation Error", 422},
		{KindBusinessRule, "Business Rule Violation", 400},
		{KindNotFound, "Not Found", 404},
		{KindAuthentication, "Authentication Error", 401},
		{KindAuthorization, "Authorization Error", 403},
		{KindRateLimit, "Rate Limit Exceeded", 429},
		{KindInternal, "Internal Server Error", 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.title, tt.kind.Title())
			assert.Equal(t, tt.status, tt.kind.Status())
			assert.Equal(t, "https://api.choretracker.com/errors/"+string(tt.kind), tt.kind.TypeURI())
		})
	}
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("create: %w", Internal(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindInternal))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(cause, KindInternal))

	bound := BusinessRule("dup").WithCorrelationID("abc")
	assert.Equal(t, "abc", bound.CorrelationID)
	assert.Contains(t, bound.Error(), "dup")
}

func TestNormalize_Precedence(t *testing.T) {
	cid := uuid.NewString()

	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantTitle  string
		wantDetail string
	}{
		{
			name:       "classified error passes through",
			err:        BusinessRule("User with this email already exists"),
			wantKind:   KindBusinessRule,
			wantStatus: 400,
			wantTitle:  "Business Rule Violation",
			wantDetail: "User with this email already exists",
		},
		{
			name:       "wrapped classified error",
			err:        fmt.Errorf("handler: %w", Validation("Name cannot be empty")),
			wantKind:   KindValidation,
			wantStatus: 422,
			wantTitle:  "Validation Error",
			wantDetail: "Name cannot be empty",
		},
		{
			name:       "custom title and status are kept",
			err:        &Error{Kind: KindBusinessRule, Title: "Conflict", Status: 409, Detail: "taken"},
			wantKind:   KindBusinessRule,
			wantStatus: 409,
			wantTitle:  "Conflict",
			wantDetail: "taken",
		},
		{
			name:       "entity not found",
			err:        fmt.Errorf("get chore: %w", models.ErrChoreNotFound),
			wantKind:   KindNotFound,
			wantStatus: 404,
			wantTitle:  "Not Found",
			wantDetail: "Chore not found",
		},
		{
			name:       "generic not found",
			err:        models.ErrNotFound,
			wantKind:   KindNotFound,
			wantStatus: 404,
			wantTitle:  "Not Found",
			wantDetail: "Resource not found",
		},
		{
			name:       "http 404",
			err:        NewHTTPError(404, ""),
			wantKind:   KindNotFound,
			wantStatus: 404,
			wantTitle:  "Not Found",
			wantDetail: "Not Found",
		},
		{
			name:       "http 401",
			err:        NewHTTPError(401, "missing token"),
			wantKind:   KindAuthentication,
			wantStatus: 401,
			wantTitle:  "Authentication Error",
			wantDetail: "missing token",
		},
		{
			name:       "http 403",
			err:        NewHTTPError(403, ""),
			wantKind:   KindAuthorization,
			wantStatus: 403,
			wantTitle:  "Authorization Error",
			wantDetail: "Forbidden",
		},
		{
			name:       "other http status maps to internal category",
			err:        NewHTTPError(405, ""),
			wantKind:   KindInternal,
			wantStatus: 405,
			wantTitle:  "Internal Server Error",
			wantDetail: "Method Not Allowed",
		},
		{
			name:       "unexpected error does not leak",
			err:        errors.New("pq: relation users does not exist"),
			wantKind:   KindInternal,
			wantStatus: 500,
			wantTitle:  "Internal Server Error",
			wantDetail: GenericDetail,
		},
		{
			name:       "internal wrapper does not leak",
			err:        Internal(errors.New("secret stack")),
			wantKind:   KindInternal,
			wantStatus: 500,
			wantTitle:  "Internal Server Error",
			wantDetail: GenericDetail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, env := Normalize(tt.err, "/users/1", cid, fixedNow)

			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantKind.TypeURI(), env.Type)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantTitle, env.Title)
			assert.Equal(t, tt.wantDetail, env.Detail)
			assert.Equal(t, "/users/1", env.Instance)
			assert.Equal(t, cid, env.CorrelationID)
			assert.Equal(t, "2024-03-10T13:30:15.123Z", env.Timestamp)
		})
	}
}

func TestNormalize_CorrelationID(t *testing.T) {
	t.Run("classified error keeps its own id", func(t *testing.T) {
		_, env := Normalize(NotFound("gone").WithCorrelationID("own-id"), "/x", "request-id", fixedNow)
		assert.Equal(t, "own-id", env.CorrelationID)
	})

	t.Run("missing id is generated", func(t *testing.T) {
		_, env := Normalize(errors.New("x"), "", "", fixedNow)
		_, err := uuid.Parse(env.CorrelationID)
		assert.NoError(t, err)
		assert.Equal(t, "/", env.Instance)
	})
}

func TestResponder_Write(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "debug")
	cid := uuid.NewString()

	responder := NewResponder(log,
		WithClock(func() time.Time { return fixedNow }),
		WithCorrelationSource(func(context.Context) string { return cid }),
	)

	req := httptest.NewRequest(http.MethodGet, "/chores/99", nil)
	rec := httptest.NewRecorder()

	responder.Write(rec, req, fmt.Errorf("lookup: %w", models.ErrChoreNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, cid, rec.Header().Get(HeaderCorrelationID))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, field := range []string{"type", "title", "status", "detail", "instance", "correlation_id", "timestamp"} {
		assert.Contains(t, body, field)
	}
	assert.Equal(t, KindNotFound.TypeURI(), body["type"])
	assert.Contains(t, strings.ToLower(body["detail"].(string)), "not found")
	assert.Equal(t, cid, body["correlation_id"])
	assert.Equal(t, "/chores/99", body["instance"])
}

func TestResponder_LogsInternalFailures(t *testing.T) {
	var buf bytes.Buffer
	responder := NewResponder(logger.New(&buf, "info"))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set(HeaderCorrelationID, "from-header")

	responder.Write(rec, req, errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "from-header", rec.Header().Get(HeaderCorrelationID))
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, buf.String(), "connection reset by peer")
	assert.Contains(t, buf.String(), "from-header")
}
