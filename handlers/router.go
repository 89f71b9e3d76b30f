package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"coursevault-backend/logging"
	"coursevault-backend/services"
)

// RouterDeps carries the services the HTTP layer is built from.
type RouterDeps struct {
	Courses        *services.CourseService
	Titles         *services.TitleService
	CoursesDir     string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires every route and wraps the router with CORS.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	courseHandler := NewCourseHandler(deps.Courses, logger)
	titleHandler := NewTitleHandler(deps.Titles, logger)
	systemHandler := NewSystemHandler(deps.CoursesDir, deps.Titles.Cache(), logger)

	r := mux.NewRouter()
	r.Use(createLoggingMiddleware(logging.NewComponentLogger(logger, "http")))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, http.StatusNotFound, "Not found")
	})

	// Course tree routes
	r.HandleFunc("/api/courses", courseHandler.ListCourses).Methods("GET")
	r.HandleFunc("/api/courses/{id}", courseHandler.GetCourse).Methods("GET")
	r.HandleFunc("/api/stats", courseHandler.GetStats).Methods("GET")

	// Title routes
	r.HandleFunc("/api/get-title/{media_id}", titleHandler.GetTitle).Methods("GET")
	r.HandleFunc("/api/fetch-titles", titleHandler.FetchTitles).Methods("POST")
	r.HandleFunc("/api/bulk-fetch", titleHandler.BulkFetch).Methods("POST")
	r.HandleFunc("/api/refresh-cache", titleHandler.RefreshCache).Methods("GET")

	// Static course files
	r.HandleFunc("/courses/{path:.+}", courseHandler.ServeCourseFile).Methods("GET", "HEAD")

	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/", systemHandler.Index).Methods("GET")

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return corsHandler.Handler(r)
}

// createLoggingMiddleware logs each request with its status, duration and a
// request id that is also returned in the X-Request-ID header.
func createLoggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("request",
				slog.String(logging.FieldRequestID, requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
