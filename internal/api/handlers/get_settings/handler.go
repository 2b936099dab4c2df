package get_settings

import (
	"net/http"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/settings
// Пока настройки не сохранены, возвращаются значения по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("GET /admin/settings - Failed to get settings: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /admin/settings - Settings retrieved successfully: makeup_window_days=%d",
		result.MakeupWindowDays)
	handlers.RespondJSON(w, http.StatusOK, result)
}
