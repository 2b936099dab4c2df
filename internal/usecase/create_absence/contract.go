package create_absence

import (
	"context"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	LockByID(ctx context.Context, id string) (*domain.Slot, error)
	UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error
}

// AbsenceRepository интерфейс репозитория пропусков
type AbsenceRepository interface {
	Create(ctx context.Context, absence *domain.Absence) (*domain.Absence, error)
	ExistsOpenForChild(ctx context.Context, slotID, childName string) (bool, error)
}

// SettingsProvider источник действующих глобальных настроек
type SettingsProvider interface {
	Current(ctx context.Context) (domain.Settings, error)
}

// TokenGenerator выпускает resume-токены и коды подтверждения
type TokenGenerator interface {
	NewOpaqueToken() (string, error)
	NewConfirmCode() (string, error)
}

// Notifier отправляет уведомления без блокировки вызывающего
type Notifier interface {
	Notify(ctx context.Context, kind mailer.Kind, to string, payload mailer.Payload)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
