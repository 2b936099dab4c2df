package makeup

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
	"absence_id",
	"child_name",
	"class_band",
	"absent_date",
	"slot_id",
	"slot_starts_at",
	"status",
	"cancel_reason",
	"contact_email",
	"cancel_token",
	"decline_token",
	"confirm_code",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заявками на отработку
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку
// Вызывается внутри транзакции вместе с увеличением capacity_makeup_used слота
func (r *Repository) Create(ctx context.Context, req *domain.MakeupRequest) (*domain.MakeupRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("requests").
		Columns(
			"id",
			"absence_id",
			"child_name",
			"class_band",
			"absent_date",
			"slot_id",
			"slot_starts_at",
			"status",
			"contact_email",
			"cancel_token",
			"decline_token",
			"confirm_code",
			"created_at",
			"updated_at",
		).
		Values(
			req.ID,
			req.AbsenceID,
			req.ChildName,
			req.ClassBand,
			req.AbsentDate,
			req.SlotID,
			req.SlotStartsAt,
			req.Status,
			req.ContactEmail,
			req.CancelToken,
			req.DeclineToken,
			req.ConfirmCode,
			req.CreatedAt,
			req.CreatedAt,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
			return nil, ErrDuplicateToken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return req, nil
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.MakeupRequest, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrRequestNotFound
	}
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// LockByID получает заявку по ID с блокировкой строки
func (r *Repository) LockByID(ctx context.Context, id string) (*domain.MakeupRequest, error) {
	if !psqlbuilder.IsUUID(id) {
		return nil, ErrRequestNotFound
	}
	return r.getOne(ctx, "LockByID", squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx))
}

// GetByCancelToken получает заявку по cancel-токену (без блокировки)
func (r *Repository) GetByCancelToken(ctx context.Context, token string) (*domain.MakeupRequest, error) {
	return r.getOne(ctx, "GetByCancelToken", squirrel.Eq{"cancel_token": token}, false)
}

// GetByDeclineToken получает заявку по decline-токену (без блокировки)
func (r *Repository) GetByDeclineToken(ctx context.Context, token string) (*domain.MakeupRequest, error) {
	return r.getOne(ctx, "GetByDeclineToken", squirrel.Eq{"decline_token": token}, false)
}

func selectOneQuery(where squirrel.Eq, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("requests").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq, forUpdate bool) (*domain.MakeupRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectOneQuery(where, forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan request: %w", ErrScanRow, op, err)
	}

	return req, nil
}

// ListByConfirmCode получает все заявки с кодом подтверждения
func (r *Repository) ListByConfirmCode(ctx context.Context, code string) ([]*domain.MakeupRequest, error) {
	return r.list(ctx, "ListByConfirmCode", psqlbuilder.Select(columns...).
		From("requests").
		Where(squirrel.Eq{"confirm_code": code}).
		OrderBy("slot_starts_at ASC"))
}

// ListByAbsence получает заявки пропуска
// Внутри транзакции подтвержденные заявки блокируются: их отменяет каскад отмены пропуска
func (r *Repository) ListByAbsence(ctx context.Context, absenceID string) ([]*domain.MakeupRequest, error) {
	if !psqlbuilder.IsUUID(absenceID) {
		return []*domain.MakeupRequest{}, nil
	}

	selectBuilder := psqlbuilder.Select(columns...).
		From("requests").
		Where(squirrel.Eq{"absence_id": absenceID}).
		OrderBy("created_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.list(ctx, "ListByAbsence", selectBuilder)
}

// ListBySlot получает все заявки на слот
func (r *Repository) ListBySlot(ctx context.Context, slotID string) ([]*domain.MakeupRequest, error) {
	if !psqlbuilder.IsUUID(slotID) {
		return []*domain.MakeupRequest{}, nil
	}
	return r.list(ctx, "ListBySlot", psqlbuilder.Select(columns...).
		From("requests").
		Where(squirrel.Eq{"slot_id": slotID}).
		OrderBy("created_at ASC"))
}

// List получает заявки по фильтру (админка, сверка)
func (r *Repository) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.MakeupRequest, error) {
	if filter.SlotID != nil && !psqlbuilder.IsUUID(*filter.SlotID) {
		return []*domain.MakeupRequest{}, nil
	}
	if filter.AbsenceID != nil && !psqlbuilder.IsUUID(*filter.AbsenceID) {
		return []*domain.MakeupRequest{}, nil
	}
	return r.list(ctx, "List", listQuery(filter))
}

func listQuery(filter domain.RequestFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From("requests").
		OrderBy("slot_starts_at ASC", "created_at ASC")

	if filter.SlotID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_id": *filter.SlotID})
	}
	if filter.AbsenceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"absence_id": *filter.AbsenceID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StartFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"slot_starts_at": *filter.StartFrom})
	}
	if filter.StartTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"slot_starts_at": *filter.StartTo})
	}
	return selectBuilder
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.MakeupRequest, error) {
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

	requests := make([]*domain.MakeupRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan request: %w", ErrScanRow, op, err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %w", ErrExecQuery, op, err)
	}

	return requests, nil
}

// ExistsConfirmedForChild проверяет, есть ли подтвержденная заявка ребенка с таким именем на слот
func (r *Repository) ExistsConfirmedForChild(ctx context.Context, slotID, childName string) (bool, error) {
	if !psqlbuilder.IsUUID(slotID) {
		return false, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := existsConfirmedForChildQuery(slotID, childName).ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsConfirmedForChild - build select query: %w", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsConfirmedForChild - scan result: %w", ErrScanRow, err)
	}

	return exists, nil
}

func existsConfirmedForChildQuery(slotID, childName string) squirrel.SelectBuilder {
	return psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("requests").
		Where(squirrel.Eq{
			"slot_id":    slotID,
			"child_name": childName,
			"status":     domain.RequestStatusConfirmed,
		}).
		Suffix(")")
}

// CountConfirmedBySlot количество подтвержденных заявок на слот (для сверки счетчика)
func (r *Repository) CountConfirmedBySlot(ctx context.Context, slotID string) (int, error) {
	if !psqlbuilder.IsUUID(slotID) {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("requests").
		Where(squirrel.Eq{"slot_id": slotID, "status": domain.RequestStatusConfirmed}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountConfirmedBySlot - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountConfirmedBySlot - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// MarkCancelled переводит заявку в статус cancelled с причиной
// Токены не удаляются: повторный переход по ссылке должен получить "уже обработано"
func (r *Repository) MarkCancelled(ctx context.Context, id string, reason domain.CancelReason, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("requests").
		Set("status", domain.RequestStatusCancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkCancelled - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkCancelled - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkCancelled - get affected rows: %w", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// UpdateSlotStartsAt синхронизирует денормализованное время начала у всех заявок слота
func (r *Repository) UpdateSlotStartsAt(ctx context.Context, slotID string, startsAt time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("requests").
		Set("slot_starts_at", startsAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: UpdateSlotStartsAt - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateSlotStartsAt - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateSlotStartsAt - get affected rows: %w", ErrExecQuery, err)
	}

	return affected, nil
}

// DeleteBySlot удаляет все заявки на слот (каскад удаления слота)
func (r *Repository) DeleteBySlot(ctx context.Context, slotID string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("requests").
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySlot - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySlot - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySlot - get affected rows: %w", ErrExecQuery, err)
	}

	return affected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*domain.MakeupRequest, error) {
	var req domain.MakeupRequest
	err := row.Scan(
		&req.ID,
		&req.AbsenceID,
		&req.ChildName,
		&req.ClassBand,
		&req.AbsentDate,
		&req.SlotID,
		&req.SlotStartsAt,
		&req.Status,
		&req.CancelReason,
		&req.ContactEmail,
		&req.CancelToken,
		&req.DeclineToken,
		&req.ConfirmCode,
		&req.CancelledAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if req.AbsentDate != nil {
		date := domain.DateOnly(*req.AbsentDate)
		req.AbsentDate = &date
	}
	return &req, nil
}
