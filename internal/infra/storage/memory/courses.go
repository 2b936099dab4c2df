package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	courseRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/course"
)

// CourseRepository курсы в памяти
type CourseRepository struct {
	store *Store
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	defer r.store.lock(ctx)()

	course.ID = ensureID(course.ID)
	now := time.Now()
	course.CreatedAt, course.UpdatedAt = now, now
	r.store.courses[course.ID] = *course

	return course, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	defer r.store.lock(ctx)()

	course, ok := r.store.courses[id]
	if !ok {
		return nil, courseRepo.ErrCourseNotFound
	}
	return &course, nil
}

func (r *CourseRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Course, error) {
	defer r.store.lock(ctx)()

	result := make([]*domain.Course, 0)
	for _, course := range r.store.courses {
		if activeOnly && !course.IsActive {
			continue
		}
		course := course
		result = append(result, &course)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.IsBefore(b.StartTime)
		}
		return a.Label < b.Label
	})
	return result, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	defer r.store.lock(ctx)()

	existing, ok := r.store.courses[course.ID]
	if !ok {
		return nil, courseRepo.ErrCourseNotFound
	}

	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now()
	r.store.courses[course.ID] = *course

	return course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.courses[id]; !ok {
		return courseRepo.ErrCourseNotFound
	}
	delete(r.store.courses, id)

	return nil
}
