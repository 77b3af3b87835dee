package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/services"
)

// ChoreHandler handles chore endpoints.
type ChoreHandler struct {
	service     services.ChoreService
	assignments services.AssignmentService
	responder   *problem.Responder
	validate    *validator.Validate
}

// NewChoreHandler creates a new ChoreHandler.
func NewChoreHandler(svc services.ChoreService, assignments services.AssignmentService, responder *problem.Responder) *ChoreHandler {
	return &ChoreHandler{
		service:     svc,
		assignments: assignments,
		responder:   responder,
		validate:    NewValidator(),
	}
}

// List handles GET /chores.
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.service.List(r.Context())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chores)
}

// Get handles GET /chores/{id}.
func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	chore, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

// Create handles POST /chores.
func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ChoreCreateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}

	chore, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, chore)
}

// Update handles PUT /chores/{id}.
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	var req ChoreUpdateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}

	chore, err := h.service.Update(r.Context(), id, req.toModel())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

// Delete handles DELETE /chores/{id}.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.Write(w, r, err)
		return
	}
	deleted(w, "Chore")
}

// Assignments handles GET /chores/{id}/assignments.
func (h *ChoreHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	assignments, err := h.assignments.ListForChore(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}
