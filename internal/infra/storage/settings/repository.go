package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/dbmetrics"
	"github.com/m04kA/kesseki-furikae/pkg/psqlbuilder"
)

// singletonID настройки хранятся в единственной строке
const singletonID = 1

// Repository репозиторий глобальных настроек
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает настройки
// Возвращает ErrSettingsNotFound, если строка еще не создана - вызывающий код берет значения по умолчанию
func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("makeup_window_days", "cutoff_time", "updated_at").
		From("settings").
		Where(squirrel.Eq{"id": singletonID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %w", ErrBuildQuery, err)
	}

	var settings domain.Settings
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&settings.MakeupWindowDays,
		&settings.CutoffTime,
		&settings.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %w", ErrScanRow, err)
	}

	return &settings, nil
}

// Upsert создает или обновляет единственную строку настроек
func (r *Repository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := upsertQuery(settings).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&settings.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	return settings, nil
}

func upsertQuery(settings *domain.Settings) squirrel.InsertBuilder {
	return psqlbuilder.Insert("settings").
		Columns("id", "makeup_window_days", "cutoff_time").
		Values(singletonID, settings.MakeupWindowDays, settings.CutoffTime).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			makeup_window_days = EXCLUDED.makeup_window_days,
			cutoff_time = EXCLUDED.cutoff_time,
			updated_at = NOW()
		RETURNING updated_at`)
}
