package list_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/bookings"
)

const (
	msgInvalidParams    = "検索条件の形式が正しくありません"
	msgInvalidTimeRange = "開始日は終了日以前の日付を指定してください"
)

type Handler struct {
	service BookingService
	loc     *time.Location
	logger  Logger
}

func NewHandler(service BookingService, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/bookings
// Query params: slotId, absenceId, status, startDate, endDate (YYYY-MM-DD) - все опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	serviceReq, err := ToServiceRequest(
		query.Get("slotId"),
		query.Get("absenceId"),
		query.Get("status"),
		query.Get("startDate"),
		query.Get("endDate"),
		h.loc,
	)
	if err != nil {
		h.logger.Warn("GET /admin/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidTimeRange):
			h.logger.Warn("GET /admin/bookings - Invalid time range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /admin/bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /admin/bookings - Failed to list bookings: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/bookings - Bookings retrieved successfully: count=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
