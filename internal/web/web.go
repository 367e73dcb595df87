package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/coursecat/internal/formatter"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
)

// CatalogHandler serves the catalog API for one [tasks.Controller].
type CatalogHandler struct {
	ctrl   *tasks.Controller
	logger *log.Logger
	mux    *http.ServeMux
	routes []string
}

// EmbedResponse is the body of GET /api/courses/{id}/embed.
type EmbedResponse struct {
	ID        int64  `json:"id"`
	CourseURL string `json:"course_url"`
	EmbedURL  string `json:"embed_url"`
	VideoID   string `json:"video_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewCatalogHandler creates a handler backed by ctrl.
func NewCatalogHandler(ctrl *tasks.Controller, logger *log.Logger) *CatalogHandler {
	h := &CatalogHandler{ctrl: ctrl, logger: logger, mux: http.NewServeMux()}

	h.handle("GET /healthz", h.health)
	h.handle("GET /api/catalog", h.catalog)
	h.handle("POST /api/catalog/reload", h.reload)
	h.handle("POST /api/catalog/clear", h.clear)
	h.handle("POST /api/categories/{name}/toggle", h.toggle)
	h.handle("POST /api/categories/{name}/start", h.start)
	h.handle("POST /api/courses/{id}/select", h.selectCourse)
	h.handle("POST /api/courses/{id}/complete", h.complete)
	h.handle("GET /api/courses/{id}/embed", h.embed)
	h.handle("POST /api/connection/retry", h.retry)

	return h
}

func (h *CatalogHandler) handle(pattern string, fn http.HandlerFunc) {
	h.mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	out := make([]string, len(h.routes))
	copy(out, h.routes)
	return out
}

// ServeHTTP implements [http.Handler].
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// HealthResponse is the liveness body. Routes lists the patterns this handler serves.
type HealthResponse struct {
	Status string   `json:"status"`
	Routes []string `json:"routes"`
}

func (h *CatalogHandler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Routes: h.Routes()})
}

func (h *CatalogHandler) catalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// reload answers with the view even when the sample file failed. The view carries the displayed error.
func (h *CatalogHandler) reload(w http.ResponseWriter, r *http.Request) {
	err := h.ctrl.Reload(r.Context())
	switch {
	case errors.Is(err, shared.ErrReloadUnavailable):
		h.writeError(w, err)
		return
	case err != nil:
		h.logger.Warn("reload fell back to built-in sample data", "error", err)
	}
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearSelection()
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) toggle(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Toggle(r.PathValue("name")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.StartCategory(r.PathValue("name")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) selectCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.ctrl.Select(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, ok := h.ctrl.Find(id); !ok {
		h.writeError(w, shared.ErrCourseNotFound)
		return
	}
	_ = h.ctrl.MarkCompleted(r.Context(), id)
	h.writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) embed(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	course, ok := h.ctrl.Find(id)
	if !ok {
		h.writeError(w, shared.ErrCourseNotFound)
		return
	}
	videoID, _ := formatter.VideoID(course.CourseURL)
	h.writeJSON(w, http.StatusOK, EmbedResponse{
		ID:        course.ID,
		CourseURL: course.CourseURL,
		EmbedURL:  formatter.EmbedURL(course.CourseURL),
		VideoID:   videoID,
	})
}

func (h *CatalogHandler) retry(w http.ResponseWriter, r *http.Request) {
	result, err := h.ctrl.Retry(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Attempt tasks.AttemptResult `json:"attempt"`
		View    tasks.View          `json:"view"`
	}{result, h.ctrl.Snapshot()})
}

func courseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: course id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrRetryUnavailable), errors.Is(err, shared.ErrReloadUnavailable):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
