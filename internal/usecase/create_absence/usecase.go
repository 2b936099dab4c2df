package create_absence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
)

// UseCase use case регистрации пропуска
type UseCase struct {
	slotRepo     SlotRepository
	absenceRepo  AbsenceRepository
	settings     SettingsProvider
	tokens       TokenGenerator
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	absenceRepo AbsenceRepository,
	settings SettingsProvider,
	tokens TokenGenerator,
	notifier Notifier,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		absenceRepo:  absenceRepo,
		settings:     settings,
		tokens:       tokens,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute регистрирует пропуск и освобождает место ребенка в исходном слоте
// Создание пропуска и уменьшение capacity_current выполняются в одной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAbsence: slot=%s, band=%s, date=%s",
		req.OriginalSlotID, req.ClassBand, req.AbsentDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAbsence: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время и настройки (окно отработки)
	now := uc.timeProvider.Now()

	settings, err := uc.settings.Current(ctx)
	if err != nil {
		uc.logger.Error("CreateAbsence: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load settings: %w", ErrInternal, err)
	}

	// 3. Выпускаем токен и код заранее - вне транзакции
	resumeToken, err := uc.tokens.NewOpaqueToken()
	if err != nil {
		uc.logger.Error("CreateAbsence: failed to generate resume token: %v", err)
		return nil, fmt.Errorf("%w: failed to generate resume token: %w", ErrInternal, err)
	}

	confirmCode, err := uc.tokens.NewConfirmCode()
	if err != nil {
		uc.logger.Error("CreateAbsence: failed to generate confirm code: %v", err)
		return nil, fmt.Errorf("%w: failed to generate confirm code: %w", ErrInternal, err)
	}

	var result *domain.Absence

	// 4. Пропуск и счетчик слота меняются атомарно
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем исходный слот
		slot, err := uc.slotRepo.LockByID(txCtx, req.OriginalSlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateAbsence: slot id=%s not found", req.OriginalSlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateAbsence: failed to lock slot id=%s: %v", req.OriginalSlotID, err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		// 4.2. Дата и уровень должны совпадать со слотом
		if err := validateSlot(req, slot); err != nil {
			uc.logger.Warn("CreateAbsence: slot id=%s rejected: %v", slot.ID, err)
			return err
		}

		// 4.3. Задним числом пропуск не регистрируется
		if slot.HasStarted(now) {
			uc.logger.Warn("CreateAbsence: slot id=%s already started at %s", slot.ID, slot.StartsAt)
			return ErrSlotAlreadyStarted
		}

		// 4.4. Повторная отправка формы не должна освобождать второе место
		exists, err := uc.absenceRepo.ExistsOpenForChild(txCtx, slot.ID, req.ChildName)
		if err != nil {
			uc.logger.Error("CreateAbsence: failed to check existing absence: %v", err)
			return fmt.Errorf("%w: failed to check existing absence: %w", ErrInternal, err)
		}
		if exists {
			uc.logger.Warn("CreateAbsence: child already has an open absence for slot id=%s", slot.ID)
			return ErrDuplicateAbsence
		}

		// 4.5. Освобождаем место записанного ученика
		if err := slot.ReleaseEnrolledSeat(); err != nil {
			uc.logger.Warn("CreateAbsence: slot id=%s has capacity_current=%d", slot.ID, slot.CapacityCurrent)
			return ErrNoEnrolledSeat
		}

		// 4.6. Создаем пропуск
		absence := &domain.Absence{
			ID:             uuid.NewString(),
			ChildName:      req.ChildName,
			ClassBand:      req.ClassBand,
			AbsentDate:     domain.DateOnly(req.AbsentDate),
			OriginalSlotID: slot.ID,
			ContactEmail:   req.ContactEmail,
			ResumeToken:    resumeToken,
			ConfirmCode:    confirmCode,
			MakeupDeadline: settings.MakeupDeadline(req.AbsentDate),
			Status:         domain.AbsenceStatusPending,
			CreatedAt:      now,
		}

		created, err := uc.absenceRepo.Create(txCtx, absence)
		if err != nil {
			uc.logger.Error("CreateAbsence: failed to create absence: %v", err)
			return fmt.Errorf("%w: failed to create absence: %w", ErrInternal, err)
		}

		// 4.7. Сохраняем счетчик
		if err := uc.slotRepo.UpdateCounters(txCtx, slot.ID, slot.CapacityCurrent, slot.CapacityMakeupUsed); err != nil {
			uc.logger.Error("CreateAbsence: failed to update slot id=%s counters: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to update slot counters: %w", ErrInternal, err)
		}

		uc.logger.Info("CreateAbsence: slot id=%s capacity_current=%d/%d",
			slot.ID, slot.CapacityCurrent, slot.CapacityLimit)

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAbsence: successfully created absence id=%s", result.ID)

	// 5. Уведомление - после коммита, ошибки отправки не влияют на результат
	if result.HasContact() {
		uc.notifier.Notify(ctx, mailer.KindAbsenceConfirmed, *result.ContactEmail, mailer.Payload{
			ChildName:      result.ChildName,
			ClassBand:      string(result.ClassBand),
			AbsentDate:     result.AbsentDate,
			ConfirmCode:    result.ConfirmCode,
			ResumeToken:    result.ResumeToken,
			MakeupDeadline: result.MakeupDeadline,
		})
	}

	return &Response{
		AbsenceID:      result.ID,
		ResumeToken:    result.ResumeToken,
		ConfirmCode:    result.ConfirmCode,
		MakeupDeadline: result.MakeupDeadline,
		Status:         string(result.Status),
		CreatedAt:      result.CreatedAt,
	}, nil
}
