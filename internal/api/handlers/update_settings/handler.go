package update_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/kesseki-furikae/internal/api/handlers"
	"github.com/m04kA/kesseki-furikae/internal/service/settings"
	"github.com/m04kA/kesseki-furikae/internal/service/settings/models"
)

const (
	msgInvalidRequestBody = "リクエストの形式が正しくありません"
	msgInvalidData        = "設定値に誤りがあります"
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

// Handle PUT /api/v1/admin/settings
// Новое окно отработки действует только для пропусков, созданных после изменения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if !handlers.DecodeAndValidate(w, r, &req, msgInvalidRequestBody) {
		h.logger.Warn("PUT /admin/settings - Invalid request")
		return
	}

	result, err := h.service.Update(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidInput):
			h.logger.Warn("PUT /admin/settings - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /admin/settings - Failed to update settings: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/settings - Settings updated successfully: makeup_window_days=%d, cutoff_time=%s",
		result.MakeupWindowDays, result.CutoffTime)
	handlers.RespondJSON(w, http.StatusOK, result)
}
