package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	createBooking "github.com/m04kA/kesseki-furikae/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgAbsenceNotFound    = "欠席連絡が見つかりません。リンクまたは確認コードをご確認ください"
	msgSlotNotFound       = "指定されたレッスン枠が見つかりません"
	msgClassBandMismatch  = "クラスのレベルがレッスン枠と一致しません"
	msgOriginalSlot       = "欠席したレッスン枠には振替できません"
	msgOutsideWindow      = "このレッスン枠は振替可能期間の対象外です"
	msgAlreadyStarted     = "このレッスンはすでに開始しています"
	msgDeadlinePassed     = "振替の期限を過ぎています"
	msgAlreadyBooked      = "この欠席連絡ではすでに振替が確定しています"
	msgAbsenceCancelled   = "この欠席連絡は取り消されています"
	msgDuplicateBooking   = "このレッスン枠にはすでに予約があります"
	msgSlotFull           = "このレッスン枠は満席です。別の枠をお選びください"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /bookings - Invalid request")
		return
	}

	h.execute(w, r, "POST /bookings", req.ToUseCaseRequest())
}

// HandleAdmin POST /api/v1/admin/bookings
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	var req AdminCreateBookingRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /admin/bookings - Invalid request")
		return
	}

	h.execute(w, r, "POST /admin/bookings", req.ToUseCaseRequest())
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, route string, req *createBooking.Request) {
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrAbsenceNotFound):
			h.logger.Warn("%s - Absence not found: absence_id=%s", route, req.AbsenceID)
			handlers.RespondNotFound(w, msgAbsenceNotFound)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("%s - Slot not found: slot_id=%s", route, req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrClassBandMismatch):
			h.logger.Warn("%s - Class band mismatch: slot_id=%s", route, req.SlotID)
			handlers.RespondBadRequest(w, msgClassBandMismatch)

		case errors.Is(err, createBooking.ErrOriginalSlot):
			h.logger.Warn("%s - Original slot requested: slot_id=%s", route, req.SlotID)
			handlers.RespondBadRequest(w, msgOriginalSlot)

		case errors.Is(err, createBooking.ErrOutsideWindow):
			h.logger.Warn("%s - Slot outside makeup window: slot_id=%s", route, req.SlotID)
			handlers.RespondBadRequest(w, msgOutsideWindow)

		case errors.Is(err, createBooking.ErrSlotAlreadyStarted):
			h.logger.Warn("%s - Slot already started: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgAlreadyStarted)

		case errors.Is(err, createBooking.ErrDeadlinePassed):
			h.logger.Warn("%s - Makeup deadline passed: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgDeadlinePassed)

		case errors.Is(err, createBooking.ErrAlreadyBooked):
			h.logger.Warn("%s - Absence already booked: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, createBooking.ErrAbsenceCancelled):
			h.logger.Warn("%s - Absence cancelled: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgAbsenceCancelled)

		case errors.Is(err, createBooking.ErrDuplicateBooking):
			h.logger.Warn("%s - Duplicate booking: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgDuplicateBooking)

		case errors.Is(err, createBooking.ErrSlotFull):
			h.logger.Warn("%s - Slot full: slot_id=%s", route, req.SlotID)
			handlers.RespondConflict(w, msgSlotFull)

		default:
			h.logger.Error("%s - Failed to create booking: slot_id=%s, error=%v", route, req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking created successfully: request_id=%s, slot_id=%s, remaining=%d",
		route, result.RequestID, result.SlotID, result.Remaining)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
