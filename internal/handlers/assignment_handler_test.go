package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/problem"
)

func TestAssignmentHandler_Create(t *testing.T) {
	due := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAssignmentService)
		expectedStatus int
		expectedDetail string
	}{
		{
			name: "naive timestamp is read as UTC",
			body: `{"user_id":1,"chore_id":2,"due_at":"2030-05-01T18:00:00"}`,
			setupMock: func(svc *MockAssignmentService) {
				svc.On("Create", mock.Anything, models.AssignmentCreate{UserID: 1, ChoreID: 2, DueAt: due}).
					Return(&models.Assignment{ID: 5, UserID: 1, ChoreID: 2, DueAt: due, Status: models.StatusPending}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "offset timestamp is converted to UTC",
			body: `{"user_id":1,"chore_id":2,"due_at":"2030-05-01T20:00:00+02:00"}`,
			setupMock: func(svc *MockAssignmentService) {
				svc.On("Create", mock.Anything, models.AssignmentCreate{UserID: 1, ChoreID: 2, DueAt: due}).
					Return(&models.Assignment{ID: 5, DueAt: due}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing due date returns 422",
			body:           `{"user_id":1,"chore_id":2}`,
			setupMock:      func(*MockAssignmentService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "due_at: field required",
		},
		{
			name:           "unparseable due date returns 422",
			body:           `{"user_id":1,"chore_id":2,"due_at":"next tuesday"}`,
			setupMock:      func(*MockAssignmentService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: `due_at: invalid datetime format "next tuesday"`,
		},
		{
			name:           "string user id returns 422",
			body:           `{"user_id":"one","chore_id":2,"due_at":"2030-05-01T18:00:00Z"}`,
			setupMock:      func(*MockAssignmentService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedDetail: "user_id: expected int64",
		},
		{
			name: "missing user returns 400",
			body: `{"user_id":9,"chore_id":2,"due_at":"2030-05-01T18:00:00Z"}`,
			setupMock: func(svc *MockAssignmentService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(nil, problem.Wrap(problem.KindBusinessRule, models.ErrUserNotFound))
			},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAssignmentService)
			tt.setupMock(svc)
			handler := NewAssignmentHandler(svc, testResponder())

			rec := httptest.NewRecorder()
			handler.Create(rec, newRequest(http.MethodPost, "/assignments", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, decodeProblem(t, rec).Detail)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAssignmentHandler_List(t *testing.T) {
	t.Run("filters are passed through", func(t *testing.T) {
		svc := new(MockAssignmentService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f models.AssignmentFilter) bool {
			return f.UserID != nil && *f.UserID == 1 &&
				f.ChoreID == nil &&
				f.Status != nil && *f.Status == models.StatusCompleted
		})).Return([]*models.Assignment{}, nil)
		handler := NewAssignmentHandler(svc, testResponder())

		rec := httptest.NewRecorder()
		handler.List(rec, newRequest(http.MethodGet, "/assignments?user_id=1&status=COMPLETED", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad filters return 422", func(t *testing.T) {
		handler := NewAssignmentHandler(new(MockAssignmentService), testResponder())

		for _, target := range []string{"/assignments?chore_id=x", "/assignments?status=archived"} {
			rec := httptest.NewRecorder()
			handler.List(rec, newRequest(http.MethodGet, target, ""))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
		}
	})
}

func TestAssignmentHandler_Update(t *testing.T) {
	svc := new(MockAssignmentService)
	svc.On("UpdateStatus", mock.Anything, int64(4), models.StatusInProgress).
		Return(&models.Assignment{ID: 4, Status: models.StatusInProgress}, nil)
	handler := NewAssignmentHandler(svc, testResponder())

	rec := httptest.NewRecorder()
	handler.Update(rec, newRequest(http.MethodPut, "/assignments/4", `{"status":"in_progress"}`, "id", "4"))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec = httptest.NewRecorder()
	handler.Update(rec, newRequest(http.MethodPut, "/assignments/4", `{"status":"done"}`, "id", "4"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, models.ErrInvalidStatus.Error(), decodeProblem(t, rec).Detail)
}

func TestAssignmentHandler_CompleteAndDelete(t *testing.T) {
	completedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := new(MockAssignmentService)
	svc.On("Complete", mock.Anything, int64(4)).
		Return(&models.Assignment{ID: 4, Status: models.StatusCompleted, CompletedAt: &completedAt}, nil)
	svc.On("Complete", mock.Anything, int64(5)).Return(nil, models.ErrAssignmentNotFound)
	svc.On("Delete", mock.Anything, int64(4)).Return(nil)
	handler := NewAssignmentHandler(svc, testResponder())

	rec := httptest.NewRecorder()
	handler.Complete(rec, newRequest(http.MethodPost, "/assignments/4/complete", "", "id", "4"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = httptest.NewRecorder()
	handler.Complete(rec, newRequest(http.MethodPost, "/assignments/5/complete", "", "id", "5"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Assignment not found", decodeProblem(t, rec).Detail)

	rec = httptest.NewRecorder()
	handler.Delete(rec, newRequest(http.MethodDelete, "/assignments/4", "", "id", "4"))
	assert.JSONEq(t, `{"message":"Assignment deleted successfully"}`, rec.Body.String())
}

func TestAssignmentHandler_OverdueAndStatistics(t *testing.T) {
	stats := models.NewStatistics(4, 1, 2, 1)
	svc := new(MockAssignmentService)
	svc.On("ListOverdue", mock.Anything).Return([]*models.Assignment{{ID: 1, Status: models.StatusOverdue}}, nil)
	svc.On("Statistics", mock.Anything).Return(&stats, nil)
	handler := NewAssignmentHandler(svc, testResponder())

	rec := httptest.NewRecorder()
	handler.Overdue(rec, newRequest(http.MethodGet, "/assignments/overdue", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"overdue"`)

	rec = httptest.NewRecorder()
	handler.Statistics(rec, newRequest(http.MethodGet, "/statistics", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatisticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Statistics)
	assert.Equal(t, int64(4), resp.Statistics.TotalAssignments)
	assert.Equal(t, 25.0, resp.Statistics.CompletionRate)
}
