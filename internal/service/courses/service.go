package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	courseRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/course"
	"github.com/m04kA/kesseki-furikae/internal/service/courses/models"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Service сервис шаблонов курсов
// Курс только заполняет поля при пакетном создании слотов, записи на курс нет
type Service struct {
	repo   CourseRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса курсов
func NewService(repo CourseRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create создает курс
func (s *Service) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.CourseResponse, error) {
	s.logger.Info("Create: label=%q, weekday=%d, time=%s, band=%s", req.Label, req.Weekday, req.StartTime, req.ClassBand)

	course := &domain.Course{
		ID:       uuid.NewString(),
		IsActive: true,
	}

	if err := applyFields(course, &req.Label, &req.Weekday, &req.StartTime, &req.ClassBand, &req.CapacityLimit); err != nil {
		s.logger.Warn("Create: invalid input: %v", err)
		return nil, err
	}

	created, err := s.repo.Create(ctx, course)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created course id=%s", created.ID)
	return models.FromDomainCourse(created), nil
}

// Get возвращает курс
func (s *Service) Get(ctx context.Context, id string) (*models.CourseResponse, error) {
	course, err := s.get(ctx, "Get", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainCourse(course), nil
}

// List возвращает курсы, отсортированные по дню недели и времени
func (s *Service) List(ctx context.Context, activeOnly bool) (*models.CourseListResponse, error) {
	courses, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}
	return models.FromDomainCourseList(courses), nil
}

// Update изменяет курс. Уже созданные слоты не меняются.
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateCourseRequest) (*models.CourseResponse, error) {
	s.logger.Info("Update: course id=%s", id)

	course, err := s.get(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	if err := applyFields(course, req.Label, req.Weekday, req.StartTime, req.ClassBand, req.CapacityLimit); err != nil {
		s.logger.Warn("Update: invalid input for course id=%s: %v", id, err)
		return nil, err
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, course)
	if err != nil {
		if errors.Is(err, courseRepo.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("Update: repository error for course id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated course id=%s", id)
	return models.FromDomainCourse(updated), nil
}

// Delete удаляет курс
func (s *Service) Delete(ctx context.Context, id string) error {
	s.logger.Info("Delete: course id=%s", id)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, courseRepo.ErrCourseNotFound) {
			s.logger.Warn("Delete: course id=%s not found", id)
			return ErrCourseNotFound
		}
		s.logger.Error("Delete: repository error for course id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
	}

	return nil
}

func (s *Service) get(ctx context.Context, op, id string) (*domain.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, courseRepo.ErrCourseNotFound) {
			s.logger.Warn("%s: course id=%s not found", op, id)
			return nil, ErrCourseNotFound
		}
		s.logger.Error("%s: repository error for course id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return course, nil
}

// applyFields переносит переданные поля в курс с проверкой
func applyFields(course *domain.Course, label *string, weekday *int, startTime, band *string, limit *int) error {
	if label != nil {
		trimmed := strings.TrimSpace(*label)
		if trimmed == "" || len([]rune(trimmed)) > domain.MaxCourseLabelLength {
			return fmt.Errorf("%w: label must be 1..%d characters", ErrInvalidInput, domain.MaxCourseLabelLength)
		}
		course.Label = trimmed
	}

	if weekday != nil {
		if *weekday < int(time.Sunday) || *weekday > int(time.Saturday) {
			return fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
		}
		course.Weekday = time.Weekday(*weekday)
	}

	if startTime != nil {
		t, err := types.NewTimeStringFromString(strings.TrimSpace(*startTime))
		if err != nil {
			return fmt.Errorf("%w: startTime must be HH:MM", ErrInvalidInput)
		}
		course.StartTime = t
	}

	if band != nil {
		parsed, err := domain.ParseClassBand(*band)
		if err != nil {
			return fmt.Errorf("%w: unknown classBand %q", ErrInvalidInput, *band)
		}
		course.ClassBand = parsed
	}

	if limit != nil {
		if *limit < domain.MinCapacityLimit || *limit > domain.MaxCapacityLimit {
			return fmt.Errorf("%w: capacityLimit must be between %d and %d",
				ErrInvalidInput, domain.MinCapacityLimit, domain.MaxCapacityLimit)
		}
		course.CapacityLimit = *limit
	}

	return nil
}
