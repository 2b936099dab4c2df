package get_absence

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/absences"
	"github.com/m04kA/kesseki-furikae/internal/service/absences/models"
)

const (
	msgNotFound          = "欠席連絡が見つかりません。リンクをご確認ください"
	msgInvalidInput      = "入力内容に誤りがあります"
	msgLookupParamsEmpty = "確認コード（6桁）とお子さまのお名前を入力してください"
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

// Handle GET /api/v1/absences/resume/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	absence, err := h.service.GetByResumeToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, absences.ErrAbsenceNotFound):
			h.logger.Warn("GET /absences/resume/{token} - Absence not found")
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, absences.ErrInvalidInput):
			h.logger.Warn("GET /absences/resume/{token} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /absences/resume/{token} - Failed to get absence: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /absences/resume/{token} - Absence retrieved successfully: absence_id=%s", absence.ID)
	handlers.RespondJSON(w, http.StatusOK, absence)
}

// HandleLookup GET /api/v1/absences/lookup?code=123456&childName=...
// Код не уникален, поэтому без имени ребенка поиск не выполняется
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	req := &models.LookupRequest{
		Code:      r.URL.Query().Get("code"),
		ChildName: r.URL.Query().Get("childName"),
	}

	if fields := handlers.ValidateStruct(req); fields != nil || req.ChildName == "" {
		h.logger.Warn("GET /absences/lookup - Invalid query")
		handlers.RespondValidationError(w, msgLookupParamsEmpty, fields)
		return
	}

	result, err := h.service.LookupByConfirmCode(r.Context(), req)
	if err != nil {
		if errors.Is(err, absences.ErrInvalidInput) {
			h.logger.Warn("GET /absences/lookup - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgLookupParamsEmpty)
			return
		}
		h.logger.Error("GET /absences/lookup - Failed to lookup absences: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /absences/lookup - Lookup completed: absences=%d, bookings=%d",
		len(result.Absences), len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
