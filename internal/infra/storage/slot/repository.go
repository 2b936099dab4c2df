package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
	"github.com/m04kA/kesseki-furikae/pkg/psqlbuilder"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

const codeUniqueViolation pq.ErrorCode = "23505"

var columns = []string{
	"id",
	"lesson_date",
	"start_time",
	"starts_at",
	"course_label",
	"class_band",
	"capacity_limit",
	"capacity_current",
	"capacity_makeup_used",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает слот. ID генерирует вызывающий код
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slots").
		Columns(
			"id",
			"lesson_date",
			"start_time",
			"starts_at",
			"course_label",
			"class_band",
			"capacity_limit",
			"capacity_current",
			"capacity_makeup_used",
		).
		Values(
			slot.ID,
			slot.LessonDate,
			slot.StartTime,
			slot.StartsAt,
			slot.CourseLabel,
			slot.ClassBand,
			slot.CapacityLimit,
			slot.CapacityCurrent,
			slot.CapacityMakeupUsed,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrSlotNotFound
	}
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// LockByID получает слот по ID с блокировкой строки (SELECT ... FOR UPDATE)
// Должен вызываться внутри транзакции: все изменения счетчиков идут только после блокировки
func (r *Repository) LockByID(ctx context.Context, id string) (*domain.Slot, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrSlotNotFound
	}
	return r.getOne(ctx, "LockByID", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// GetByNaturalKey получает слот по дате, времени начала и уровню
func (r *Repository) GetByNaturalKey(ctx context.Context, date time.Time, startTime types.TimeString, band domain.ClassBand) (*domain.Slot, error) {
	return r.getOne(ctx, "GetByNaturalKey", squirrel.Eq{
		"lesson_date": domain.DateOnly(date),
		"start_time":  startTime.String(),
		"class_band":  band,
	}, false)
}

func selectOneQuery(where squirrel.Eq, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("slots").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq, forUpdate bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectOneQuery(where, forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %w", ErrScanRow, op, err)
	}

	return slot, nil
}

// List получает слоты по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan slot: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %w", ErrExecQuery, err)
	}

	return slots, nil
}

func listQuery(filter domain.SlotFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("slots").
		OrderBy("starts_at ASC", "class_band ASC")

	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"lesson_date": domain.DateOnly(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"lesson_date": domain.DateOnly(*filter.DateTo)})
	}
	if filter.ClassBand != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"class_band": *filter.ClassBand})
	}
	if filter.StartsAfter != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"starts_at": *filter.StartsAfter})
	}
	if filter.StartsBefore != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"starts_at": *filter.StartsBefore})
	}
	if filter.StartTime != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"start_time": filter.StartTime.String()})
	}
	if filter.CourseLabel != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"course_label": *filter.CourseLabel})
	}
	if filter.Weekday != nil {
		// EXTRACT(DOW) совпадает с нумерацией time.Weekday: 0 = воскресенье
		selectBuilder = selectBuilder.Where(squirrel.Expr("EXTRACT(DOW FROM lesson_date) = ?", int(*filter.Weekday)))
	}
	if filter.OnlyAvailable {
		selectBuilder = selectBuilder.Where("capacity_limit - capacity_current - capacity_makeup_used > 0")
	}
	return selectBuilder
}

// Update обновляет все поля слота, включая счетчики
func (r *Repository) Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("lesson_date", slot.LessonDate).
		Set("start_time", slot.StartTime).
		Set("starts_at", slot.StartsAt).
		Set("course_label", slot.CourseLabel).
		Set("class_band", slot.ClassBand).
		Set("capacity_limit", slot.CapacityLimit).
		Set("capacity_current", slot.CapacityCurrent).
		Set("capacity_makeup_used", slot.CapacityMakeupUsed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// UpdateCounters записывает новые значения счетчиков
// Значения вычисляются вызывающим кодом после LockByID
func (r *Repository) UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("capacity_current", current).
		Set("capacity_makeup_used", makeupUsed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateCounters - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateCounters - execute update: %w", ErrExecQuery, err)
	}

	return checkAffected(result, "UpdateCounters")
}

// Delete удаляет слот
func (r *Repository) Delete(ctx context.Context, id string) error {
	if !psqlbuilder.IsUUID(id) {
		return ErrSlotNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	return checkAffected(result, "Delete")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	err := row.Scan(
		&slot.ID,
		&slot.LessonDate,
		&slot.StartTime,
		&slot.StartsAt,
		&slot.CourseLabel,
		&slot.ClassBand,
		&slot.CapacityLimit,
		&slot.CapacityCurrent,
		&slot.CapacityMakeupUsed,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.LessonDate = domain.DateOnly(slot.LessonDate)
	return &slot, nil
}

func checkAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get affected rows: %w", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}
