package problem

import (
	"errors"
	"net/http"
	"time"

	"github.com/choretracker/choretracker/internal/models"
	"github.com/google/uuid"
)

// TimestampFormat is the ISO-8601 layout used for envelope timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the uniform error body. Every field is always populated.
type Envelope struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	Detail        string `json:"detail"`
	Instance      string `json:"instance"`
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}

// Normalize classifies err and builds its envelope. Precedence: classified
// errors pass through unchanged, then not-found sentinels, then bare HTTP
// status errors, and anything else becomes a generic internal error.
// The timestamp is the observation time now, in UTC.
func Normalize(err error, instance, correlationID string, now time.Time) (Kind, Envelope) {
	kind, title, status, detail, cid := classify(err)
	if cid == "" {
		cid = correlationID
	}
	if cid == "" {
		cid = uuid.NewString()
	}
	if instance == "" {
		instance = "/"
	}
	if detail == "" {
		detail = title
	}

	return kind, Envelope{
		Type:          kind.TypeURI(),
		Title:         title,
		Status:        status,
		Detail:        detail,
		Instance:      instance,
		CorrelationID: cid,
		Timestamp:     now.UTC().Format(TimestampFormat),
	}
}

func classify(err error) (kind Kind, title string, status int, detail, correlationID string) {
	if pe, ok := As(err); ok {
		kind = pe.Kind
		if kind == "" {
			kind = KindInternal
		}
		title = pe.Title
		if title == "" {
			title = kind.Title()
		}
		status = pe.Status
		if status == 0 {
			status = kind.Status()
		}
		detail = pe.Detail
		if kind == KindInternal && detail == "" {
			detail = GenericDetail
		}
		return kind, title, status, detail, pe.CorrelationID
	}

	if errors.Is(err, models.ErrNotFound) {
		detail = "Resource not found"
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			detail = nf.Error()
		}
		return KindNotFound, KindNotFound.Title(), http.StatusNotFound, detail, ""
	}

	var he *HTTPError
	if errors.As(err, &he) {
		kind = KindForStatus(he.Status)
		return kind, kind.Title(), he.Status, he.Detail, ""
	}

	return KindInternal, KindInternal.Title(), http.StatusInternalServerError, GenericDetail, ""
}
