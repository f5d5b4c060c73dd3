package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/tickerscope/internal/api/handlers"
	"github.com/wonny/tickerscope/pkg/database"
	"github.com/wonny/tickerscope/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// Routes groups the handlers. A nil handler leaves its routes unregistered.
type Routes struct {
	Health   HealthChecker
	Accuracy *handlers.AccuracyHandler
	Rules    *handlers.RuleHandler
	Scans    *handlers.ScanHandler
	Jobs     *handlers.JobHandler
	Alerts   http.Handler // WebSocket alert stream
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(routes.Health)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	if routes.Accuracy != nil {
		api.HandleFunc("/accuracy", routes.Accuracy.GetAccuracy).Methods("GET")
	}
	if routes.Rules != nil {
		api.HandleFunc("/rules", routes.Rules.List).Methods("GET")
		api.HandleFunc("/rules", routes.Rules.Create).Methods("POST")
		api.HandleFunc("/rules/{id:[0-9]+}", routes.Rules.SetEnabled).Methods("PATCH")
	}
	if routes.Scans != nil {
		api.HandleFunc("/scans/latest", routes.Scans.Latest).Methods("GET")
		api.HandleFunc("/analyze/{ticker}", routes.Scans.Analyze).Methods("GET")
	}
	if routes.Jobs != nil {
		api.HandleFunc("/jobs", routes.Jobs.Stats).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", routes.Jobs.Run).Methods("POST")
	}
	if routes.Alerts != nil {
		r.Handle("/ws/alerts", routes.Alerts).Methods("GET")
	}

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "tickerscope-api",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			h, err := db.HealthCheck(ctx)
			body["database"] = h
			if err != nil {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// requestIDMiddleware tags each request with an X-Request-ID
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket은 Hijacker가 필요하므로 래핑하지 않음
			if r.URL.Path == "/ws/alerts" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
				"request_id": w.Header().Get("X-Request-ID"),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
