package search_slots

import (
	"context"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	// List возвращает слоты по фильтру, отсортированные по времени начала
	List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error)
}

// SettingsProvider источник действующих глобальных настроек
type SettingsProvider interface {
	Current(ctx context.Context) (domain.Settings, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
