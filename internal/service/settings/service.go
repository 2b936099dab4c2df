package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	settingsRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/settings"
	"github.com/m04kA/kesseki-furikae/internal/service/settings/models"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// Service сервис глобальных настроек
type Service struct {
	repo     SettingsRepository
	defaults domain.Settings
	logger   Logger
}

// NewService создает сервис настроек
// defaults используются, пока настройки не сохранены в БД
func NewService(repo SettingsRepository, defaults domain.Settings, logger Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Current возвращает действующие настройки
// Вызывается usecase'ами явно в начале каждой операции
func (s *Service) Current(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return s.defaults, nil
		}
		s.logger.Error("Current: failed to get settings: %v", err)
		return domain.Settings{}, fmt.Errorf("%w: Current - repository error: %w", ErrInternal, err)
	}
	return *stored, nil
}

// Get возвращает настройки для админки
func (s *Service) Get(ctx context.Context) (*models.SettingsResponse, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomainSettings(current), nil
}

// Update меняет настройки
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: makeupWindowDays=%v, cutoffTime=%v", req.MakeupWindowDays, req.CutoffTime)

	// 1. Берем текущие значения
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Применяем изменения
	if req.MakeupWindowDays != nil {
		if *req.MakeupWindowDays < domain.MinMakeupWindowDays || *req.MakeupWindowDays > domain.MaxMakeupWindowDays {
			s.logger.Warn("Update: makeupWindowDays=%d out of range", *req.MakeupWindowDays)
			return nil, fmt.Errorf("%w: makeupWindowDays must be between %d and %d",
				ErrInvalidInput, domain.MinMakeupWindowDays, domain.MaxMakeupWindowDays)
		}
		current.MakeupWindowDays = *req.MakeupWindowDays
	}

	if req.CutoffTime != nil {
		cutoff, err := types.NewTimeStringFromString(*req.CutoffTime)
		if err != nil {
			s.logger.Warn("Update: invalid cutoffTime=%q", *req.CutoffTime)
			return nil, fmt.Errorf("%w: cutoffTime must be HH:MM", ErrInvalidInput)
		}
		current.CutoffTime = cutoff
	}

	// 3. Сохраняем
	saved, err := s.repo.Upsert(ctx, &current)
	if err != nil {
		s.logger.Error("Update: failed to save settings: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: settings saved, makeupWindowDays=%d", saved.MakeupWindowDays)
	return models.FromDomainSettings(*saved), nil
}
