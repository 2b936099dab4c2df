package cancel_absence

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	cancelAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_absence"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidInput       = "入力内容に誤りがあります"
	msgNotFound           = "欠席連絡が見つかりません。リンクまたは確認コードをご確認ください"
	msgAlreadyCancelled   = "この欠席連絡はすでに取り消されています"
	msgLateCancellation   = "受付から10分を過ぎ、元のレッスン枠が埋まっているため取り消しできません。教室へご連絡ください"
)

type Handler struct {
	useCase CancelAbsenceUseCase
	logger  Logger
}

func NewHandler(useCase CancelAbsenceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleByToken POST /api/v1/absences/resume/{token}/cancel
func (h *Handler) HandleByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	h.execute(w, r, "POST /absences/resume/{token}/cancel", &cancelAbsence.Request{ResumeToken: token})
}

// HandleByCode POST /api/v1/absences/{absenceId}/cancel
// Body: {"confirmCode": "123456"}
func (h *Handler) HandleByCode(w http.ResponseWriter, r *http.Request) {
	absenceID := mux.Vars(r)["absenceId"]

	var req CancelByCodeRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("POST /absences/{id}/cancel - Invalid request: absence_id=%s", absenceID)
		return
	}

	h.execute(w, r, "POST /absences/{id}/cancel", &cancelAbsence.Request{
		AbsenceID:   absenceID,
		ConfirmCode: req.ConfirmCode,
	})
}

// HandleByAdmin POST /api/v1/admin/absences/{absenceId}/cancel
func (h *Handler) HandleByAdmin(w http.ResponseWriter, r *http.Request) {
	absenceID := mux.Vars(r)["absenceId"]
	h.execute(w, r, "POST /admin/absences/{id}/cancel", &cancelAbsence.Request{
		AbsenceID: absenceID,
		ByAdmin:   true,
	})
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, route string, req *cancelAbsence.Request) {
	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, cancelAbsence.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, cancelAbsence.ErrAbsenceNotFound):
			h.logger.Warn("%s - Absence not found: absence_id=%s", route, req.AbsenceID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelAbsence.ErrAlreadyCancelled):
			h.logger.Warn("%s - Already cancelled: absence_id=%s", route, req.AbsenceID)
			handlers.RespondConflict(w, msgAlreadyCancelled)

		case errors.Is(err, cancelAbsence.ErrLateCancellation):
			h.logger.Warn("%s - Late cancellation rejected: absence_id=%s", route, req.AbsenceID)
			handlers.RespondConflict(w, msgLateCancellation)

		default:
			h.logger.Error("%s - Failed to cancel absence: absence_id=%s, error=%v", route, req.AbsenceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Absence cancelled successfully: absence_id=%s, cascaded=%d",
		route, result.AbsenceID, len(result.CancelledRequests))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
