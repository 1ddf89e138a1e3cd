package httpapi

import (
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/metrics"
)

// unmatchedRoute labels requests that matched no route or no method.
const unmatchedRoute = "unmatched"

// NewRouter wires the handler's endpoints. m may be nil, in which case
// /metrics is not served.
func NewRouter(h *HTTPHandler, m *metrics.Metrics, logger log.Logger) *mux.Router {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	formatter := NewDefaultResponseFormatter()

	r := mux.NewRouter()
	r.HandleFunc("/api/chart", h.ChartHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/upload", h.UploadHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	logRequests := accessLog(logger, m)
	// Middleware added with Use only wraps matched routes.
	r.NotFoundHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, formatter.FormatErrorResponse("Not found"))
	}))
	r.MethodNotAllowedHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, formatter.FormatErrorResponse("Method not allowed"))
	}))

	r.Use(logRequests)
	return r
}

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

// accessLog logs every routed request and records it in m.
func accessLog(logger log.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			route := unmatchedRoute
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			elapsed := time.Since(start)

			m.ObserveRequest(route, rec.status, elapsed)
			level.Info(logger).Log("msg", "request", "method", r.Method, "route", route,
				"status", rec.status, "bytes", rec.size, "duration", elapsed)
		})
	}
}
