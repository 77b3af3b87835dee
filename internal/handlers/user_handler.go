package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/services"
)

// UserHandler handles user endpoints.
type UserHandler struct {
	service     services.UserService
	assignments services.AssignmentService
	responder   *problem.Responder
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc services.UserService, assignments services.AssignmentService, responder *problem.Responder) *UserHandler {
	return &UserHandler{
		service:     svc,
		assignments: assignments,
		responder:   responder,
		validate:    NewValidator(),
	}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}

	user, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	var req UserUpdateRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		h.responder.Write(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), id, req.toModel())
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.Write(w, r, err)
		return
	}
	deleted(w, "User")
}

// Assignments handles GET /users/{id}/assignments.
func (h *UserHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}

	assignments, err := h.assignments.ListForUser(r.Context(), id)
	if err != nil {
		h.responder.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}
