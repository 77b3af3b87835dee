package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/services"
)

// AssignmentHandler handles assignment and statistics endpoints.
type AssignmentHandler struct {
	service   services.AssignmentService
	responder *problem.Responder
	validate  *validator.Validate
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(svc services.AssignmentService, responder *problem.Responder) *AssignmentHandler {
	return &AssignmentHandler{
		service:   svc,
		responder: responder,
		validate:  NewValidator(),
	}
}

// List handles GET /assignments with optional user_id, chore_id and status
// filters.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAssignmentFilter(r)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	assignments, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func parseAssignmentFilter(r *http.Request) (models.AssignmentFilter, error) {
	var filter models.AssignmentFilter
	var err error

	if filter.UserID, err = queryID(r, "user_id"); err != nil {
		return filter, err
	}
	if filter.ChoreID, err = queryID(r, "chore_id"); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseAssignmentStatus(raw)
		if err != nil {
			return filter, problem.Wrap(problem.KindValidation, err)
		}
		filter.Status = &status
	}
	return filter, nil
}

// Overdue handles GET /assignments/overdue.
func (h *AssignmentHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.service.ListOverdue(r.Context())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Get handles GET /assignments/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create handles POST /assignments.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AssignmentCreateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}

	a, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PUT /assignments/{id}, which changes the status.
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	var req AssignmentUpdateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}
	status, err := models.ParseAssignmentStatus(req.Status)
	if err != nil {
		h.responder.Write(w, r, problem.Wrap(problem.KindValidation, err))
		return
	}

	a, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Complete handles POST /assignments/{id}/complete.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	a, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /assignments/{id}.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.Write(w, r, err)
		return
	}
	deleted(w, "Assignment")
}

// Statistics handles GET /statistics.
func (h *AssignmentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatisticsResponse{Statistics: stats})
}
