package absences

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// AbsenceRepository интерфейс репозитория пропусков
type AbsenceRepository interface {
	GetByResumeToken(ctx context.Context, token string) (*domain.Absence, error)
	ListByConfirmCode(ctx context.Context, code string) ([]*domain.Absence, error)
	List(ctx context.Context, filter domain.AbsenceFilter) ([]*domain.Absence, error)
}

// RequestRepository интерфейс репозитория заявок на отработку
type RequestRepository interface {
	ListByAbsence(ctx context.Context, absenceID string) ([]*domain.MakeupRequest, error)
	ListByConfirmCode(ctx context.Context, code string) ([]*domain.MakeupRequest, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
