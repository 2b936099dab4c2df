package courses

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// CourseRepository интерфейс репозитория курсов
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (*domain.Course, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) (*domain.Course, error)
	Delete(ctx context.Context, id string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
