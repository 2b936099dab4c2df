package update_settings

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/service/settings/models"
)

type SettingsService interface {
	Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
