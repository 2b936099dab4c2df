package create_absence

import (
	"errors"
	"net/http"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	createAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/create_absence"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidDate        = "欠席日の形式が正しくありません（YYYY-MM-DD）"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgSlotNotFound       = "指定されたレッスン枠が見つかりません"
	msgDateMismatch       = "欠席日とレッスン枠の日付が一致しません"
	msgClassBandMismatch  = "クラスのレベルがレッスン枠と一致しません"
	msgAlreadyStarted     = "このレッスンはすでに開始しているため欠席連絡できません"
	msgNoEnrolledSeat     = "このレッスン枠には欠席できる在籍生徒がいません"
	msgDuplicateAbsence   = "このお子さまのこのレッスンへの欠席連絡はすでに受け付けています"
)

type Handler struct {
	useCase CreateAbsenceUseCase
	logger  Logger
}

func NewHandler(useCase CreateAbsenceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/absences
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAbsenceRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /absences - Invalid request")
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /absences - Invalid absent date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAbsence.ErrInvalidInput):
			h.logger.Warn("POST /absences - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAbsence.ErrSlotNotFound):
			h.logger.Warn("POST /absences - Slot not found: slot_id=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createAbsence.ErrDateMismatch):
			h.logger.Warn("POST /absences - Date mismatch: slot_id=%s, date=%s", req.SlotID, req.AbsentDate)
			handlers.RespondBadRequest(w, msgDateMismatch)

		case errors.Is(err, createAbsence.ErrClassBandMismatch):
			h.logger.Warn("POST /absences - Class band mismatch: slot_id=%s, band=%s", req.SlotID, req.ClassBand)
			handlers.RespondBadRequest(w, msgClassBandMismatch)

		case errors.Is(err, createAbsence.ErrSlotAlreadyStarted):
			h.logger.Warn("POST /absences - Slot already started: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgAlreadyStarted)

		case errors.Is(err, createAbsence.ErrNoEnrolledSeat):
			h.logger.Warn("POST /absences - No enrolled seat: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgNoEnrolledSeat)

		case errors.Is(err, createAbsence.ErrDuplicateAbsence):
			h.logger.Warn("POST /absences - Duplicate absence: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgDuplicateAbsence)

		default:
			h.logger.Error("POST /absences - Failed to create absence: slot_id=%s, error=%v", req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /absences - Absence created successfully: absence_id=%s, slot_id=%s",
		result.AbsenceID, req.SlotID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
