package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"coursevault-backend/logging"
	"coursevault-backend/models"
	"coursevault-backend/services"
)

// Version is reported by the API index.
const Version = "1.0.0"

// SystemHandler serves the health check and the API index
type SystemHandler struct {
	coursesDir string
	cache      *services.TitleCache
	logger     *slog.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(coursesDir string, cache *services.TitleCache, logger *slog.Logger) *SystemHandler {
	if abs, err := filepath.Abs(coursesDir); err == nil {
		coursesDir = abs
	}
	return &SystemHandler{
		coursesDir: coursesDir,
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, "system_handler"),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, models.HealthResponse{
		Status:       "healthy",
		CoursesDir:   h.coursesDir,
		TitlesCached: h.cache.Len(),
	})
}

// Index handles GET /
func (h *SystemHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, models.IndexResponse{
		Message: "Courses API",
		Version: Version,
		Endpoints: map[string]string{
			"/api/courses":              "Get all courses",
			"/api/courses/<id>":         "Get specific course",
			"/api/stats":                "Get statistics",
			"/api/get-title/<media_id>": "Get title for media ID",
			"/api/fetch-titles":         "Fetch titles for URLs (POST)",
			"/api/bulk-fetch":           "Fetch titles for newline-separated links (POST)",
			"/api/refresh-cache":        "Refresh title cache",
			"/courses/<path>":           "Serve course files",
			"/health":                   "Health check",
		},
		CacheStats: models.CacheStats{TitlesCached: h.cache.Len()},
	})
}
