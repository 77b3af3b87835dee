package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/pkg/logger"
)

// MockUserService is a mock implementation of services.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, in models.UserCreate) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, in models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChoreService is a mock implementation of services.ChoreService.
type MockChoreService struct {
	mock.Mock
}

func (m *MockChoreService) Create(ctx context.Context, in models.ChoreCreate) (*models.Chore, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chore), args.Error(1)
}

func (m *MockChoreService) Get(ctx context.Context, id int64) (*models.Chore, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chore), args.Error(1)
}

func (m *MockChoreService) List(ctx context.Context) ([]*models.Chore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chore), args.Error(1)
}

func (m *MockChoreService) Update(ctx context.Context, id int64, in models.ChoreUpdate) (*models.Chore, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chore), args.Error(1)
}

func (m *MockChoreService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAssignmentService is a mock implementation of services.AssignmentService.
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) assignment(args mock.Arguments) (*models.Assignment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentService) assignments(args mock.Arguments) ([]*models.Assignment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assignment), args.Error(1)
}

func (m *MockAssignmentService) Create(ctx context.Context, in models.AssignmentCreate) (*models.Assignment, error) {
	return m.assignment(m.Called(ctx, in))
}

func (m *MockAssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	return m.assignment(m.Called(ctx, id))
}

func (m *MockAssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]*models.Assignment, error) {
	return m.assignments(m.Called(ctx, filter))
}

func (m *MockAssignmentService) ListForUser(ctx context.Context, userID int64) ([]*models.Assignment, error) {
	return m.assignments(m.Called(ctx, userID))
}

func (m *MockAssignmentService) ListForChore(ctx context.Context, choreID int64) ([]*models.Assignment, error) {
	return m.assignments(m.Called(ctx, choreID))
}

func (m *MockAssignmentService) ListOverdue(ctx context.Context) ([]*models.Assignment, error) {
	return m.assignments(m.Called(ctx))
}

func (m *MockAssignmentService) UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) (*models.Assignment, error) {
	return m.assignment(m.Called(ctx, id, status))
}

func (m *MockAssignmentService) Complete(ctx context.Context, id int64) (*models.Assignment, error) {
	return m.assignment(m.Called(ctx, id))
}

func (m *MockAssignmentService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssignmentService) Statistics(ctx context.Context) (*models.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Statistics), args.Error(1)
}

func testResponder() *problem.Responder {
	return problem.NewResponder(logger.Nop())
}

// newRequest builds a request with an optional JSON body and chi URL params
// given as name, value pairs.
func newRequest(method, target, body string, params ...string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.Envelope {
	t.Helper()
	require.Equal(t, problem.ContentType, rec.Header().Get("Content-Type"))

	var env problem.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
