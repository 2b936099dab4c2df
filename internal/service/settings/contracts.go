package settings

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// SettingsRepository интерфейс репозитория глобальных настроек
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
