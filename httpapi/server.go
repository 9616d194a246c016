// Package httpapi exposes the search-parameter registry and query validation
// over HTTP.
//
// Routes:
//
//   - GET  /fields           every field descriptor in declaration order
//   - GET  /fields/{key}     one descriptor with its possible values
//   - POST /validate         {"criteria":[{"field":..,"value":..}]}
//   - GET  /validate?k=v...  the same, from URL parameters
//   - GET  /metrics          Prometheus metrics, when configured
//
// Validation answers 200 when every criterion was accepted, 422 with the full
// report otherwise, and 503 when a code list could not be read.
package httpapi

import (
	"errors"
	"net/http"

	j "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/codec"
)

const maxBody = 1 << 20

// Server routes API requests to an Engine.
type Server struct {
	eng     *jobquery.Engine
	log     zerolog.Logger
	metrics http.Handler
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(log zerolog.Logger) Option { return func(s *Server) { s.log = log } }

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// New returns a Server over e.
func New(e *jobquery.Engine, opts ...Option) *Server {
	s := &Server{eng: e, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	r := mux.NewRouter()
	r.Use(requestLogger(s.log))
	r.HandleFunc("/fields", s.listFields).Methods(http.MethodGet)
	r.HandleFunc("/fields/{key}", s.getField).Methods(http.MethodGet)
	r.HandleFunc("/validate", s.validateBody).Methods(http.MethodPost)
	r.Handle("/validate", ValidateQuery(e)(http.HandlerFunc(s.validateParams))).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	s.router = r
	return s
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Field is the JSON view of a descriptor.
type Field struct {
	Key            string   `json:"key"`
	DisplayName    string   `json:"displayName,omitempty"`
	Description    string   `json:"description,omitempty"`
	Type           string   `json:"type"`
	Kind           string   `json:"kind"`
	Min            *int64   `json:"min,omitempty"`
	Max            *int64   `json:"max,omitempty"`
	CodeList       string   `json:"codeList,omitempty"`
	AllowBlank     bool     `json:"allowBlank,omitempty"`
	PossibleValues []string `json:"possibleValues,omitempty"`
}

func fieldView(d jobquery.FieldDescriptor) Field {
	f := Field{
		Key:         d.Key,
		DisplayName: d.DisplayName,
		Description: d.Description,
		Type:        d.Type.String(),
		Kind:        d.Kind().String(),
		Min:         d.Min,
		Max:         d.Max,
		AllowBlank:  d.AllowBlank,
	}
	if d.CodeList != nil {
		f.CodeList = d.CodeList.String()
	}
	if d.Kind() == jobquery.KindEnum {
		f.PossibleValues = d.Enum
	}
	return f
}

func (s *Server) listFields(w http.ResponseWriter, r *http.Request) {
	descs := s.eng.Registry().Fields()
	out := make([]Field, 0, len(descs))
	for _, d := range descs {
		out = append(out, fieldView(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	values, err := s.eng.PossibleValues(r.Context(), key)
	if err != nil {
		if _, unknown := jobquery.AsIssues(err); unknown {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.log.Error().Err(err).Str("field", key).Msg("Failed to resolve possible values")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	d, _ := s.eng.Registry().Lookup(key)
	f := fieldView(d)
	f.PossibleValues = values
	writeJSON(w, http.StatusOK, f)
}

// ValidateRequest is the POST /validate body.
type ValidateRequest struct {
	Criteria []jobquery.Criterion `json:"criteria"`
}

// ValidateResponse carries the report and the encoded query string of the
// accepted values.
type ValidateResponse struct {
	jobquery.Report
	Query string `json:"query"`
}

func (s *Server) validateBody(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	dec := j.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, s.eng.Build(r.Context(), req.Criteria))
}

func (s *Server) validateParams(w http.ResponseWriter, r *http.Request) {
	q, ok := QueryFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("query missing from context"))
		return
	}
	s.respond(w, q)
}

func (s *Server) respond(w http.ResponseWriter, q *jobquery.ValidatedQuery) {
	writeJSON(w, statusFor(q), ValidateResponse{
		Report: q.Report(),
		Query:  codec.QueryString(codec.Encode(q)),
	})
}

func statusFor(q *jobquery.ValidatedQuery) int {
	if q.OK() {
		return http.StatusOK
	}
	for _, it := range q.Issues() {
		switch it.Code {
		case jobquery.CodeSourceUnavailable, jobquery.CodeFieldMissing:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}

// ErrorPayload shapes an error for JSON responses. Issues are listed as
// rejections, the same shape the validation report uses.
func ErrorPayload(err error) map[string]any {
	if iss, ok := jobquery.AsIssues(err); ok {
		return map[string]any{"error": err.Error(), "rejections": iss.Rejections()}
	}
	return map[string]any{"error": err.Error()}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorPayload(err))
}
