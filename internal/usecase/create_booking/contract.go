package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
)

// AbsenceRepository интерфейс репозитория пропусков
type AbsenceRepository interface {
	GetByResumeToken(ctx context.Context, token string) (*domain.Absence, error)
	LockByID(ctx context.Context, id string) (*domain.Absence, error)
	UpdateStatus(ctx context.Context, id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) error
}

// RequestRepository интерфейс репозитория заявок на отработку
type RequestRepository interface {
	Create(ctx context.Context, req *domain.MakeupRequest) (*domain.MakeupRequest, error)
	// ExistsConfirmedForChild проверяет, есть ли уже подтвержденная заявка ребенка на слот
	ExistsConfirmedForChild(ctx context.Context, slotID, childName string) (bool, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	LockByID(ctx context.Context, id string) (*domain.Slot, error)
	UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error
}

// SettingsProvider источник действующих глобальных настроек
type SettingsProvider interface {
	Current(ctx context.Context) (domain.Settings, error)
}

// TokenGenerator выпускает токены отмены/отказа и коды подтверждения
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
