package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"coursevault-backend/logging"
	"coursevault-backend/models"
	"coursevault-backend/services"
	"coursevault-backend/utils"
)

// CourseHandler handles course listing and course file requests
type CourseHandler struct {
	courseService *services.CourseService
	logger        *slog.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		logger:        logging.NewComponentLogger(logger, "course_handler"),
	}
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, models.CoursesResponse{Courses: h.courseService.Courses()})
}

// GetCourse handles GET /api/courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	course, err := h.courseService.Course(id)
	if errors.Is(err, services.ErrCourseNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load course", slog.String("course_id", id), logging.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load course")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, course)
}

// GetStats handles GET /api/stats
func (h *CourseHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.courseService.Stats())
}

// ServeCourseFile handles GET /courses/{path}, streaming a file from the
// courses directory. Range requests are handled by http.ServeContent.
func (h *CourseHandler) ServeCourseFile(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]

	filePath, err := utils.SafeJoin(h.courseService.Root(), rel)
	if err != nil {
		h.logger.Warn("rejected course file path", slog.String("path", rel), logging.Error(err))
		writeError(w, h.logger, http.StatusNotFound, "File not found")
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		writeError(w, h.logger, http.StatusNotFound, "File not found")
		return
	}

	if ct := contentTypeFor(filePath); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".vtt":
		return "text/vtt"
	case ".srt":
		return "application/x-subrip"
	default:
		return ""
	}
}
