package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	cancelBooking "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_booking"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgNotFound           = "予約が見つかりません。リンクまたは確認コードをご確認ください"
	msgAlreadyProcessed   = "この予約はすでに取り消されています"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleCancelToken POST /api/v1/bookings/cancel/{token}
func (h *Handler) HandleCancelToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	h.execute(w, r, "POST /bookings/cancel/{token}", &cancelBooking.Request{CancelToken: token})
}

// HandleDeclineToken POST /api/v1/bookings/decline/{token}
func (h *Handler) HandleDeclineToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	h.execute(w, r, "POST /bookings/decline/{token}", &cancelBooking.Request{DeclineToken: token})
}

// HandleByCode POST /api/v1/bookings/{requestId}/cancel
// Body: {"confirmCode": "123456"}
func (h *Handler) HandleByCode(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]

	var req CancelByCodeRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request: request_id=%s", requestID)
		return
	}

	h.execute(w, r, "POST /bookings/{id}/cancel", &cancelBooking.Request{
		RequestID:   requestID,
		ConfirmCode: req.ConfirmCode,
	})
}

// HandleByAdmin POST /api/v1/admin/bookings/{requestId}/cancel
func (h *Handler) HandleByAdmin(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["requestId"]
	h.execute(w, r, "POST /admin/bookings/{id}/cancel", &cancelBooking.Request{
		RequestID: requestID,
		ByAdmin:   true,
	})
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, route string, req *cancelBooking.Request) {
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, cancelBooking.ErrRequestNotFound):
			h.logger.Warn("%s - Booking not found: request_id=%s", route, req.RequestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelBooking.ErrAlreadyProcessed):
			h.logger.Warn("%s - Booking already processed: request_id=%s", route, req.RequestID)
			handlers.RespondConflict(w, msgAlreadyProcessed)

		default:
			h.logger.Error("%s - Failed to cancel booking: request_id=%s, error=%v", route, req.RequestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking cancelled successfully: request_id=%s, reason=%s",
		route, result.RequestID, result.CancelReason)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
