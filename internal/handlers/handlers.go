// Package handlers provides the HTTP handlers of the chore tracker API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/security"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// MessageResponse is returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewValidator returns a validator that reports JSON field names and knows
// the strict_email tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strict_email", func(fl validator.FieldLevel) bool {
		return security.IsValidEmail(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

// decodeJSON reads the body into dst and validates it. Every failure is a
// validation problem.
func decodeJSON(r *http.Request, v *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return problem.Validation(decodeDetail(err))
	}
	if err := v.Struct(dst); err != nil {
		return problem.Validation(validationDetail(err))
	}
	return nil
}

func decodeDetail(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var tsErr *TimestampError

	switch {
	case errors.Is(err, io.EOF):
		return "Request body is required"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "Malformed JSON body"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type.String())
		}
		return "Request body has the wrong shape"
	case errors.As(err, &tsErr):
		return tsErr.Error()
	default:
		return "Invalid request body"
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": field required"
	case "max":
		return fmt.Sprintf("%s: too long (max %s characters)", field, fe.Param())
	case "min":
		return field + ": cannot be empty"
	case "gt":
		return field + ": must be a positive integer"
	case "strict_email":
		return field + ": Invalid email format"
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}

// pathID parses the named chi URL parameter as an integer id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, problem.Validation(fmt.Sprintf("%s: value is not a valid integer", name))
	}
	return id, nil
}

// queryID parses an optional integer query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, problem.Validation(fmt.Sprintf("%s: value is not a valid integer", name))
	}
	return &id, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func deleted(w http.ResponseWriter, entity string) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: entity + " deleted successfully"})
}
