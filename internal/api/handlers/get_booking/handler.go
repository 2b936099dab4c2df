package get_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/bookings"
)

const (
	msgNotFound = "予約が見つかりません"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/bookings/{requestId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	booking, err := h.service.GetByID(r.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /admin/bookings/{id} - Booking not found: request_id=%s", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /admin/bookings/{id} - Failed to get booking: request_id=%s, error=%v", requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/bookings/{id} - Booking retrieved successfully: request_id=%s", requestID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
