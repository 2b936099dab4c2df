package slots

import (
	"context"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	LockByID(ctx context.Context, id string) (*domain.Slot, error)
	GetByNaturalKey(ctx context.Context, date time.Time, startTime types.TimeString, band domain.ClassBand) (*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error)
	Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error
	Delete(ctx context.Context, id string) error
}

// AbsenceRepository интерфейс репозитория пропусков
type AbsenceRepository interface {
	LockByID(ctx context.Context, id string) (*domain.Absence, error)
	CountByOriginalSlot(ctx context.Context, slotID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) error
}

// RequestRepository интерфейс репозитория заявок на отработку
type RequestRepository interface {
	ListBySlot(ctx context.Context, slotID string) ([]*domain.MakeupRequest, error)
	CountConfirmedBySlot(ctx context.Context, slotID string) (int, error)
	UpdateSlotStartsAt(ctx context.Context, slotID string, startsAt time.Time) (int64, error)
	DeleteBySlot(ctx context.Context, slotID string) (int64, error)
}

// CourseRepository интерфейс репозитория курсов (шаблоны для пакетного создания)
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
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
