package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	absenceRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/absence"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

// UseCase use case записи на отработку
type UseCase struct {
	absenceRepo  AbsenceRepository
	requestRepo  RequestRepository
	slotRepo     SlotRepository
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
	absenceRepo AbsenceRepository,
	requestRepo RequestRepository,
	slotRepo SlotRepository,
	settings SettingsProvider,
	tokens TokenGenerator,
	notifier Notifier,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		absenceRepo:  absenceRepo,
		requestRepo:  requestRepo,
		slotRepo:     slotRepo,
		settings:     settings,
		tokens:       tokens,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute записывает ребенка на отработку.
// Проверка доступности и занятие места выполняются после блокировки слота,
// поэтому параллельные записи не могут занять одно и то же место.
// Порядок блокировок: пропуск, затем слот.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим id пропуска (поиск по токену без блокировки)
	absenceID, err := uc.resolveAbsenceID(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: slot=%s, absence=%s, admin=%t", req.SlotID, absenceID, req.ByAdmin)

	// 3. Текущее время и настройки
	now := uc.timeProvider.Now()

	settings, err := uc.settings.Current(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load settings: %w", ErrInternal, err)
	}

	// 4. Токены выпускаются заранее - вне транзакции
	cancelToken, err := uc.tokens.NewOpaqueToken()
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate cancel token: %v", err)
		return nil, fmt.Errorf("%w: failed to generate cancel token: %w", ErrInternal, err)
	}

	declineToken, err := uc.tokens.NewOpaqueToken()
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate decline token: %v", err)
		return nil, fmt.Errorf("%w: failed to generate decline token: %w", ErrInternal, err)
	}

	var (
		result *domain.MakeupRequest
		slot   *domain.Slot
	)

	// 5. Заявка, счетчик слота и статус пропуска меняются атомарно
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking := &domain.MakeupRequest{
			ID:           uuid.NewString(),
			Status:       domain.RequestStatusConfirmed,
			CancelToken:  cancelToken,
			DeclineToken: declineToken,
			CreatedAt:    now,
		}

		// 5.1. Пропуск: блокируем и проверяем статус, срок и код
		var absence *domain.Absence
		if absenceID != "" {
			locked, err := uc.lockAbsence(txCtx, absenceID, req, now)
			if err != nil {
				return err
			}
			absence = locked

			absentDate := absence.AbsentDate
			code := absence.ConfirmCode
			booking.AbsenceID = ptr.Ptr(absence.ID)
			booking.ChildName = absence.ChildName
			booking.ClassBand = absence.ClassBand
			booking.AbsentDate = &absentDate
			booking.ContactEmail = absence.ContactEmail
			booking.ConfirmCode = &code
		} else {
			code, err := uc.tokens.NewConfirmCode()
			if err != nil {
				uc.logger.Error("CreateBooking: failed to generate confirm code: %v", err)
				return fmt.Errorf("%w: failed to generate confirm code: %w", ErrInternal, err)
			}

			booking.ChildName = req.ChildName
			booking.ClassBand = req.ClassBand
			booking.ContactEmail = req.ContactEmail
			booking.ConfirmCode = &code
		}

		// 5.2. Блокируем слот
		locked, err := uc.slotRepo.LockByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateBooking: slot id=%s not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to lock slot id=%s: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		// 5.3. Проверки слота
		if err := uc.validateSlot(locked, absence, booking.ClassBand, settings, req.ByAdmin, now); err != nil {
			uc.logger.Warn("CreateBooking: slot id=%s rejected: %v", locked.ID, err)
			return err
		}

		// 5.4. Один ребенок - одна подтвержденная заявка на слот
		exists, err := uc.requestRepo.ExistsConfirmedForChild(txCtx, locked.ID, booking.ChildName)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to check duplicates on slot id=%s: %v", locked.ID, err)
			return fmt.Errorf("%w: failed to check duplicates: %w", ErrInternal, err)
		}
		if exists {
			uc.logger.Warn("CreateBooking: child %q already booked on slot id=%s", booking.ChildName, locked.ID)
			return ErrDuplicateBooking
		}

		// 5.5. Занимаем место для отработки
		if err := locked.ReserveMakeupSeat(); err != nil {
			uc.logger.Warn("CreateBooking: slot id=%s is full (limit=%d, current=%d, makeup_used=%d)",
				locked.ID, locked.CapacityLimit, locked.CapacityCurrent, locked.CapacityMakeupUsed)
			return ErrSlotFull
		}

		// 5.6. Создаем заявку
		booking.SlotID = locked.ID
		booking.SlotStartsAt = locked.StartsAt

		created, err := uc.requestRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create request: %v", err)
			return fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
		}

		// 5.7. Сохраняем счетчик
		if err := uc.slotRepo.UpdateCounters(txCtx, locked.ID, locked.CapacityCurrent, locked.CapacityMakeupUsed); err != nil {
			uc.logger.Error("CreateBooking: failed to update slot id=%s counters: %v", locked.ID, err)
			return fmt.Errorf("%w: failed to update slot counters: %w", ErrInternal, err)
		}

		// 5.8. Пропуск получает подтвержденную отработку
		if absence != nil {
			if err := uc.absenceRepo.UpdateStatus(txCtx, absence.ID, domain.AbsenceStatusMakeupConfirmed, nil, now); err != nil {
				uc.logger.Error("CreateBooking: failed to update absence id=%s: %v", absence.ID, err)
				return fmt.Errorf("%w: failed to update absence: %w", ErrInternal, err)
			}
		}

		result = created
		slot = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	capacity := slot.Capacity()
	uc.logger.Info("CreateBooking: successfully created request id=%s on slot id=%s (%s)",
		result.ID, slot.ID, capacity.Label())

	// 6. Уведомление со ссылками отмены и отказа - после коммита
	if result.HasContact() {
		uc.notifier.Notify(ctx, mailer.KindMakeupConfirmed, *result.ContactEmail, mailer.Payload{
			ChildName:    result.ChildName,
			ClassBand:    string(result.ClassBand),
			ConfirmCode:  ptr.Deref(result.ConfirmCode, ""),
			SlotStartsAt: result.SlotStartsAt,
			CourseLabel:  slot.CourseLabel,
			CancelToken:  result.CancelToken,
			DeclineToken: result.DeclineToken,
		})
	}

	return &Response{
		RequestID:    result.ID,
		AbsenceID:    result.AbsenceID,
		ChildName:    result.ChildName,
		SlotID:       result.SlotID,
		SlotStartsAt: result.SlotStartsAt,
		CourseLabel:  slot.CourseLabel,
		Status:       string(result.Status),
		CancelToken:  result.CancelToken,
		DeclineToken: result.DeclineToken,
		ConfirmCode:  result.ConfirmCode,
		Remaining:    capacity.Remaining,
		Level:        capacity.Level,
		Label:        capacity.Label(),
		CreatedAt:    result.CreatedAt,
	}, nil
}

func (uc *UseCase) resolveAbsenceID(ctx context.Context, req *Request) (string, error) {
	if req.ResumeToken == "" {
		return req.AbsenceID, nil
	}

	absence, err := uc.absenceRepo.GetByResumeToken(ctx, req.ResumeToken)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			uc.logger.Warn("CreateBooking: unknown resume token")
			return "", ErrAbsenceNotFound
		}
		uc.logger.Error("CreateBooking: failed to find absence by token: %v", err)
		return "", fmt.Errorf("%w: failed to find absence: %w", ErrInternal, err)
	}
	return absence.ID, nil
}

// lockAbsence блокирует пропуск и проверяет, что к нему можно привязать отработку
func (uc *UseCase) lockAbsence(ctx context.Context, id string, req *Request, now time.Time) (*domain.Absence, error) {
	absence, err := uc.absenceRepo.LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			uc.logger.Warn("CreateBooking: absence id=%s not found", id)
			return nil, ErrAbsenceNotFound
		}
		uc.logger.Error("CreateBooking: failed to lock absence id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to lock absence: %w", ErrInternal, err)
	}

	if req.ResumeToken == "" && !req.ByAdmin && absence.ConfirmCode != req.ConfirmCode {
		uc.logger.Warn("CreateBooking: confirm code mismatch for absence id=%s", id)
		return nil, ErrAbsenceNotFound
	}

	if err := validateAbsence(absence); err != nil {
		uc.logger.Warn("CreateBooking: absence id=%s is %s", id, absence.Status)
		return nil, err
	}

	if !req.ByAdmin && absence.DeadlinePassed(now, uc.location) {
		uc.logger.Warn("CreateBooking: absence id=%s deadline %s passed",
			id, absence.MakeupDeadline.Format(domain.DateFormat))
		return nil, ErrDeadlinePassed
	}

	return absence, nil
}

// validateSlot проверяет уровень, время начала и окно отработки
func (uc *UseCase) validateSlot(
	slot *domain.Slot,
	absence *domain.Absence,
	band domain.ClassBand,
	settings domain.Settings,
	byAdmin bool,
	now time.Time,
) error {
	if slot.ClassBand != band {
		return ErrClassBandMismatch
	}

	if slot.HasStarted(now) {
		return ErrSlotAlreadyStarted
	}

	if absence == nil {
		return nil
	}

	if slot.ID == absence.OriginalSlotID {
		return ErrOriginalSlot
	}

	if !byAdmin && !settings.InMakeupWindow(absence.AbsentDate, slot.LessonDate) {
		return ErrOutsideWindow
	}

	return nil
}
