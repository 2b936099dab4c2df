package bookings

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// RequestRepository интерфейс репозитория заявок на отработку
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.MakeupRequest, error)
	List(ctx context.Context, filter domain.RequestFilter) ([]*domain.MakeupRequest, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
