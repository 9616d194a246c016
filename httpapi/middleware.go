package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/codec"
)

// ctxKeyQuery is a typed context key for storing the ValidatedQuery.
type ctxKeyQuery struct{}

// ContextWithQuery attaches a ValidatedQuery to the context.
func ContextWithQuery(ctx context.Context, q *jobquery.ValidatedQuery) context.Context {
	return context.WithValue(ctx, ctxKeyQuery{}, q)
}

// QueryFromContext retrieves the ValidatedQuery stored by ValidateQuery.
func QueryFromContext(ctx context.Context) (*jobquery.ValidatedQuery, bool) {
	q, ok := ctx.Value(ctxKeyQuery{}).(*jobquery.ValidatedQuery)
	return q, ok
}

// ValidateQuery builds a ValidatedQuery from the request's URL parameters, in
// their original order, and stores it in the request context. A malformed
// query string is answered with 400 and next is not called.
func ValidateQuery(e *jobquery.Engine) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pairs, err := codec.ParseQuery(r.URL.RawQuery)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			q := e.Build(r.Context(), codec.Decode(pairs))
			next.ServeHTTP(w, r.WithContext(ContextWithQuery(r.Context(), q)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("took", time.Since(start)).
				Msg("Handled request")
		})
	}
}
