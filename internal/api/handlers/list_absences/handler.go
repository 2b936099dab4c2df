package list_absences

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/service/absences"
	"github.com/m04kA/kesseki-furikae/internal/service/absences/models"
)

const (
	msgInvalidDate   = "日付の形式が正しくありません（YYYY-MM-DD）"
	msgInvalidFilter = "検索条件に誤りがあります"
)

type Handler struct {
	service AbsenceService
	logger  Logger
}

func NewHandler(service AbsenceService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/absences
// Query params: dateFrom, dateTo (YYYY-MM-DD), classBand, status - все опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &models.ListAbsencesRequest{}

	if v := query.Get("classBand"); v != "" {
		req.ClassBand = &v
	}
	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	var err error
	if req.DateFrom, err = parseOptionalDate(query.Get("dateFrom")); err != nil {
		h.logger.Warn("GET /admin/absences - Invalid dateFrom: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if req.DateTo, err = parseOptionalDate(query.Get("dateTo")); err != nil {
		h.logger.Warn("GET /admin/absences - Invalid dateTo: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, absences.ErrInvalidInput) {
			h.logger.Warn("GET /admin/absences - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)
			return
		}
		h.logger.Error("GET /admin/absences - Failed to list absences: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /admin/absences - Absences retrieved successfully: count=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	date, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
