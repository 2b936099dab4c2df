package memory

import (
	"context"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	settingsRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/settings"
)

// SettingsRepository глобальные настройки в памяти
type SettingsRepository struct {
	store *Store
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	defer r.store.lock(ctx)()

	if r.store.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	settings := *r.store.settings
	return &settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	defer r.store.lock(ctx)()

	settings.UpdatedAt = time.Now()
	stored := *settings
	r.store.settings = &stored

	return settings, nil
}
