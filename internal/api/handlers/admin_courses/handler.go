package admin_courses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/courses"
	"github.com/m04kA/kesseki-furikae/internal/service/courses/models"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidParams      = "検索条件の形式が正しくありません"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgNotFound           = "コースが見つかりません"
)

type Handler struct {
	service CourseService
	logger  Logger
}

func NewHandler(service CourseService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/admin/courses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /admin/courses - Invalid request")
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /admin/courses", "", err)
		return
	}

	h.logger.Info("POST /admin/courses - Course created successfully: course_id=%s", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Get GET /api/v1/admin/courses/{courseId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]

	result, err := h.service.Get(r.Context(), courseID)
	if err != nil {
		h.respondError(w, "GET /admin/courses/{id}", courseID, err)
		return
	}

	h.logger.Info("GET /admin/courses/{id} - Course retrieved successfully: course_id=%s", courseID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// List GET /api/v1/admin/courses
// Query params: activeOnly (опционально)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("activeOnly"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.logger.Warn("GET /admin/courses - Invalid activeOnly: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		activeOnly = parsed
	}

	result, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.respondError(w, "GET /admin/courses", "", err)
		return
	}

	h.logger.Info("GET /admin/courses - Courses retrieved successfully: count=%d", len(result.Courses))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PUT /api/v1/admin/courses/{courseId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]

	var req models.UpdateCourseRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("PUT /admin/courses/{id} - Invalid request: course_id=%s", courseID)
		return
	}

	result, err := h.service.Update(r.Context(), courseID, &req)
	if err != nil {
		h.respondError(w, "PUT /admin/courses/{id}", courseID, err)
		return
	}

	h.logger.Info("PUT /admin/courses/{id} - Course updated successfully: course_id=%s", courseID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/admin/courses/{courseId}
// Уже созданные слоты курса не затрагиваются
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseId"]

	if err := h.service.Delete(r.Context(), courseID); err != nil {
		h.respondError(w, "DELETE /admin/courses/{id}", courseID, err)
		return
	}

	h.logger.Info("DELETE /admin/courses/{id} - Course deleted successfully: course_id=%s", courseID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, route, courseID string, err error) {
	switch {
	case errors.Is(err, courses.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, courses.ErrCourseNotFound):
		h.logger.Warn("%s - Course not found: course_id=%s", route, courseID)
		handlers.RespondNotFound(w, msgNotFound)

	default:
		h.logger.Error("%s - Failed: course_id=%s, error=%v", route, courseID, err)
		handlers.RespondInternalError(w)
	}
}
