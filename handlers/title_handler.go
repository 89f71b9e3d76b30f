package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"coursevault-backend/logging"
	"coursevault-backend/models"
	"coursevault-backend/services"
)

// TitleHandler handles title lookup and cache refresh requests
type TitleHandler struct {
	titleService *services.TitleService
	logger       *slog.Logger
}

// NewTitleHandler creates a new title handler
func NewTitleHandler(titleService *services.TitleService, logger *slog.Logger) *TitleHandler {
	return &TitleHandler{
		titleService: titleService,
		logger:       logging.NewComponentLogger(logger, "title_handler"),
	}
}

// GetTitle handles GET /api/get-title/{media_id}
func (h *TitleHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	mediaID := mux.Vars(r)["media_id"]

	// Persistence errors are logged by the service; the title is still valid.
	title, cached, _ := h.titleService.GetTitle(r.Context(), mediaID)
	writeJSON(w, h.logger, http.StatusOK, models.TitleResponse{Title: title, Cached: cached})
}

// FetchTitles handles POST /api/fetch-titles
func (h *TitleHandler) FetchTitles(w http.ResponseWriter, r *http.Request) {
	var request models.FetchTitlesRequest
	if err := decodeJSON(w, r, &request); err != nil {
		h.logger.Warn("invalid fetch-titles body", logging.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.logger.Info("fetching titles",
		slog.Int("urls", len(request.URLs)),
		slog.String("course_name", request.CourseName),
		slog.String("section_name", request.SectionName))

	results, _, _ := h.titleService.FetchTitles(r.Context(), request.URLs)
	writeJSON(w, h.logger, http.StatusOK, models.FetchTitlesResponse{Titles: results})
}

// BulkFetch handles POST /api/bulk-fetch
func (h *TitleHandler) BulkFetch(w http.ResponseWriter, r *http.Request) {
	var request models.BulkFetchRequest
	if err := decodeJSON(w, r, &request); err != nil {
		h.logger.Warn("invalid bulk-fetch body", logging.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, _ := h.titleService.BulkFetch(r.Context(), request.LinksText)
	h.logger.Info("bulk fetch finished",
		slog.String("course_name", request.CourseName),
		slog.Int("total", resp.Total),
		slog.Int("new", resp.New))
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// RefreshCache handles GET /api/refresh-cache
func (h *TitleHandler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	oldCount, newCount, err := h.titleService.RefreshAll(r.Context())
	if err != nil {
		h.logger.Error("cache refresh incomplete", logging.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Cache refresh failed")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, models.RefreshResponse{
		Message:  fmt.Sprintf("Cache refreshed. Updated %d titles.", newCount),
		OldCount: oldCount,
		NewCount: newCount,
	})
}
