package problem

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/pkg/logger"
)

// ContentType is the media type of problem responses.
const ContentType = "application/problem+json"

// HeaderCorrelationID carries the request correlation id on every response.
const HeaderCorrelationID = "X-Correlation-ID"

// Responder writes normalized error envelopes.
type Responder struct {
	log           *logger.Logger
	now           func() time.Time
	correlationID func(context.Context) string
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ResponderOption {
	return func(r *Responder) {
		r.now = now
	}
}

// WithCorrelationSource sets how the request correlation id is looked up.
func WithCorrelationSource(fn func(context.Context) string) ResponderOption {
	return func(r *Responder) {
		r.correlationID = fn
	}
}

// NewResponder creates a Responder.
func NewResponder(log *logger.Logger, opts ...ResponderOption) *Responder {
	if log == nil {
		log = logger.Nop()
	}
	r := &Responder{
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write normalizes err and writes it as the response.
func (rs *Responder) Write(w http.ResponseWriter, r *http.Request, err error) {
	var cid, instance string
	if r != nil {
		instance = r.URL.Path
		if rs.correlationID != nil {
			cid = rs.correlationID(r.Context())
		}
	}
	if cid == "" {
		cid = w.Header().Get(HeaderCorrelationID)
	}

	kind, env := Normalize(err, instance, cid, rs.now())

	if kind == KindInternal {
		rs.log.Error("request failed",
			"error", err,
			"status", env.Status,
			"path", instance,
			"correlation_id", env.CorrelationID,
		)
	} else {
		rs.log.Debug("request rejected",
			"kind", string(kind),
			"status", env.Status,
			"detail", env.Detail,
			"path", instance,
			"correlation_id", env.CorrelationID,
		)
	}
	metrics.RecordError(string(kind), env.Status)

	WriteEnvelope(w, env)
}

// WriteEnvelope writes a prepared envelope with its status and correlation header.
func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set(HeaderCorrelationID, env.CorrelationID)
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}
