package absence

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
)

const codeUniqueViolation pq.ErrorCode = "23505"

var columns = []string{
	"id",
	"child_name",
	"class_band",
	"absent_date",
	"original_slot_id",
	"contact_email",
	"resume_token",
	"confirm_code",
	"makeup_deadline",
	"status",
	"cancel_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с пропусками
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пропусков
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает пропуск. ID, токен, код и время создания задает вызывающий код:
// от created_at отсчитывается окно бесплатной отмены
func (r *Repository) Create(ctx context.Context, absence *domain.Absence) (*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("absences").
		Columns(
			"id",
			"child_name",
			"class_band",
			"absent_date",
			"original_slot_id",
			"contact_email",
			"resume_token",
			"confirm_code",
			"makeup_deadline",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			absence.ID,
			absence.ChildName,
			absence.ClassBand,
			absence.AbsentDate,
			absence.OriginalSlotID,
			absence.ContactEmail,
			absence.ResumeToken,
			absence.ConfirmCode,
			absence.MakeupDeadline,
			absence.Status,
			absence.CreatedAt,
			absence.CreatedAt,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&absence.CreatedAt, &absence.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
			return nil, ErrDuplicateToken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return absence, nil
}

// GetByID получает пропуск по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Absence, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrAbsenceNotFound
	}
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// LockByID получает пропуск по ID с блокировкой строки
func (r *Repository) LockByID(ctx context.Context, id string) (*domain.Absence, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrAbsenceNotFound
	}
	return r.getOne(ctx, "LockByID", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// GetByResumeToken получает пропуск по resume-токену (без блокировки)
func (r *Repository) GetByResumeToken(ctx context.Context, token string) (*domain.Absence, error) {
	return r.getOne(ctx, "GetByResumeToken", squirrel.Eq{"resume_token": token}, false)
}

func selectOneQuery(where squirrel.Eq, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("absences").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq, forUpdate bool) (*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectOneQuery(where, forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	absence, err := scanAbsence(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan absence: %w", ErrScanRow, op, err)
	}

	return absence, nil
}

// ListByConfirmCode получает все пропуски с кодом подтверждения
// Код не уникален, поэтому всегда возвращается список (новые первыми)
func (r *Repository) ListByConfirmCode(ctx context.Context, code string) ([]*domain.Absence, error) {
	return r.list(ctx, "ListByConfirmCode", psqlbuilder.Select(columns...).
		From("absences").
		Where(squirrel.Eq{"confirm_code": code}).
		OrderBy("created_at DESC"))
}

// CountByOriginalSlot количество пропусков, ссылающихся на слот как на исходный
func (r *Repository) CountByOriginalSlot(ctx context.Context, slotID string) (int, error) {
	if !psqlbuilder.IsUUID(slotID) {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("absences").
		Where(squirrel.Eq{"original_slot_id": slotID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByOriginalSlot - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByOriginalSlot - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// ExistsOpenForChild проверяет, есть ли у ребенка неотмененный пропуск этого слота
func (r *Repository) ExistsOpenForChild(ctx context.Context, slotID, childName string) (bool, error) {
	if !psqlbuilder.IsUUID(slotID) {
		return false, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := existsOpenForChildQuery(slotID, childName).ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsOpenForChild - build select query: %w", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsOpenForChild - scan result: %w", ErrScanRow, err)
	}

	return exists, nil
}

func existsOpenForChildQuery(slotID, childName string) squirrel.SelectBuilder {
	return psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("absences").
		Where(squirrel.Eq{
			"original_slot_id": slotID,
			"child_name":       childName,
		}).
		Where(squirrel.NotEq{"status": domain.AbsenceStatusCancelled}).
		Suffix(")")
}

// List получает пропуски по фильтру (админка)
func (r *Repository) List(ctx context.Context, filter domain.AbsenceFilter) ([]*domain.Absence, error) {
	if filter.OriginalSlotID != nil && !psqlbuilder.IsUUID(*filter.OriginalSlotID) {
		return []*domain.Absence{}, nil
	}
	return r.list(ctx, "List", listQuery(filter))
}

func listQuery(filter domain.AbsenceFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("absences").
		OrderBy("absent_date DESC", "created_at DESC")

	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"absent_date": domain.DateOnly(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"absent_date": domain.DateOnly(*filter.DateTo)})
	}
	if filter.ClassBand != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"class_band": *filter.ClassBand})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.OriginalSlotID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"original_slot_id": *filter.OriginalSlotID})
	}
	return selectBuilder
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Absence, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	absences := make([]*domain.Absence, 0)
	for rows.Next() {
		absence, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan absence: %w", ErrScanRow, op, err)
		}
		absences = append(absences, absence)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %w", ErrExecQuery, op, err)
	}

	return absences, nil
}

// UpdateStatus меняет статус пропуска
// Для статуса cancelled заполняются причина и время отмены, для остальных они сбрасываются
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := updateStatusQuery(id, status, reason, at).ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get affected rows: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrAbsenceNotFound
	}

	return nil
}

func updateStatusQuery(id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) squirrel.UpdateBuilder {
	updateBuilder := psqlbuilder.Update("absences").
		Set("status", status).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})

	if status == domain.AbsenceStatusCancelled {
		return updateBuilder.
			Set("cancel_reason", reason).
			Set("cancelled_at", at)
	}
	return updateBuilder.
		Set("cancel_reason", nil).
		Set("cancelled_at", nil)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAbsence(row rowScanner) (*domain.Absence, error) {
	var absence domain.Absence
	err := row.Scan(
		&absence.ID,
		&absence.ChildName,
		&absence.ClassBand,
		&absence.AbsentDate,
		&absence.OriginalSlotID,
		&absence.ContactEmail,
		&absence.ResumeToken,
		&absence.ConfirmCode,
		&absence.MakeupDeadline,
		&absence.Status,
		&absence.CancelReason,
		&absence.CancelledAt,
		&absence.CreatedAt,
		&absence.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	absence.AbsentDate = domain.DateOnly(absence.AbsentDate)
	absence.MakeupDeadline = domain.DateOnly(absence.MakeupDeadline)
	return &absence, nil
}
