package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
	"github.com/m04kA/kesseki-furikae/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"label",
	"weekday",
	"start_time",
	"class_band",
	"capacity_limit",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с шаблонами курсов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория курсов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает курс
func (r *Repository) Create(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("courses").
		Columns("id", "label", "weekday", "start_time", "class_band", "capacity_limit", "is_active").
		Values(
			course.ID,
			course.Label,
			int(course.Weekday),
			course.StartTime,
			course.ClassBand,
			course.CapacityLimit,
			course.IsActive,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return course, nil
}

// GetByID получает курс по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrCourseNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	course, err := scanCourse(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan course: %w", ErrScanRow, err)
	}

	return course, nil
}

// List получает курсы, отсортированные по дню недели и времени
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Course, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("courses").
		OrderBy("weekday ASC", "start_time ASC", "label ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	courses := make([]*domain.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan course: %w", ErrScanRow, err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %w", ErrExecQuery, err)
	}

	return courses, nil
}

// Update обновляет курс
func (r *Repository) Update(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	if !psqlbuilder.IsUUID(course.ID) {
		return nil, ErrCourseNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("courses").
		Set("label", course.Label).
		Set("weekday", int(course.Weekday)).
		Set("start_time", course.StartTime).
		Set("class_band", course.ClassBand).
		Set("capacity_limit", course.CapacityLimit).
		Set("is_active", course.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": course.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&course.CreatedAt, &course.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return course, nil
}

// Delete удаляет курс. Уже созданные по нему слоты не затрагиваются
func (r *Repository) Delete(ctx context.Context, id string) error {
	if !psqlbuilder.IsUUID(id) {
		return ErrCourseNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get affected rows: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var course domain.Course
	var weekday int
	err := row.Scan(
		&course.ID,
		&course.Label,
		&weekday,
		&course.StartTime,
		&course.ClassBand,
		&course.CapacityLimit,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	course.Weekday = time.Weekday(weekday)
	return &course, nil
}
