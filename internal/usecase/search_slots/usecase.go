package search_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// UseCase use case поиска слотов для отработки
type UseCase struct {
	slotRepo     SlotRepository
	settings     SettingsProvider
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	settings SettingsProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute ищет слоты того же уровня в окне [дата пропуска - W, дата пропуска + W],
// которые еще не начались, и классифицирует их доступность
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SearchSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Окно отработки из настроек
	settings, err := uc.settings.Current(ctx)
	if err != nil {
		uc.logger.Error("SearchSlots: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load settings: %w", ErrInternal, err)
	}

	absentDate := domain.DateOnly(req.AbsentDate)
	from, to := settings.MakeupWindow(absentDate)
	now := uc.timeProvider.Now()

	// 3. Слоты уровня в окне, начинающиеся строго в будущем
	band := req.ClassBand
	slots, err := uc.slotRepo.List(ctx, domain.SlotFilter{
		DateFrom:    &from,
		DateTo:      &to,
		ClassBand:   &band,
		StartsAfter: &now,
	})
	if err != nil {
		uc.logger.Error("SearchSlots: failed to list slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}

	// 4. Классификация доступности
	result := buildSlots(slots, req.ExcludeSlotID, req.OnlyAvailable)

	uc.logger.Info("SearchSlots: band=%s, absent=%s, window=%s..%s, found=%d",
		band, absentDate.Format(domain.DateFormat), from.Format(domain.DateFormat), to.Format(domain.DateFormat), len(result))

	return &Response{
		ClassBand:  band,
		AbsentDate: absentDate,
		WindowFrom: from,
		WindowTo:   to,
		Slots:      result,
	}, nil
}
