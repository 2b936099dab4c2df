package search_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	searchSlots "github.com/m04kA/kesseki-furikae/internal/usecase/search_slots"
)

const (
	msgMissingClassBand = "クラスのレベルを指定してください"
	msgMissingDate      = "欠席日を指定してください"
	msgInvalidQuery     = "検索条件の形式が正しくありません"
	msgInvalidInput     = "検索条件に誤りがあります"
)

type Handler struct {
	useCase SearchSlotsUseCase
	logger  Logger
}

func NewHandler(useCase SearchSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/search
// Query params: classBand (required), absentDate (required, YYYY-MM-DD),
// excludeSlotId, onlyAvailable (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	classBand := query.Get("classBand")
	if classBand == "" {
		h.logger.Warn("GET /slots/search - Missing class band")
		handlers.RespondBadRequest(w, msgMissingClassBand)
		return
	}

	absentDate := query.Get("absentDate")
	if absentDate == "" {
		h.logger.Warn("GET /slots/search - Missing absent date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(classBand, absentDate, query.Get("excludeSlotId"), query.Get("onlyAvailable"))
	if err != nil {
		h.logger.Warn("GET /slots/search - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if errors.Is(err, searchSlots.ErrInvalidInput) {
			h.logger.Warn("GET /slots/search - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}
		h.logger.Error("GET /slots/search - Failed to search slots: band=%s, date=%s, error=%v",
			classBand, absentDate, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /slots/search - Slots retrieved successfully: band=%s, date=%s, slots_count=%d",
		classBand, absentDate, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
