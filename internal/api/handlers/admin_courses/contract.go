package admin_courses

import (
	"context"

	"github.com/m04kA/kesseki-furikae/internal/service/courses/models"
)

type CourseService interface {
	Create(ctx context.Context, req *models.CreateCourseRequest) (*models.CourseResponse, error)
	Get(ctx context.Context, id string) (*models.CourseResponse, error)
	List(ctx context.Context, activeOnly bool) (*models.CourseListResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateCourseRequest) (*models.CourseResponse, error)
	Delete(ctx context.Context, id string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
