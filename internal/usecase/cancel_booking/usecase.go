package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	makeupRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/makeup"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
	"github.com/m04kA/kesseki-furikae/pkg/ptr"
)

// UseCase use case отмены или отказа от отработки
type UseCase struct {
	requestRepo  RequestRepository
	absenceRepo  AbsenceRepository
	slotRepo     SlotRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	absenceRepo AbsenceRepository,
	slotRepo SlotRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo:  requestRepo,
		absenceRepo:  absenceRepo,
		slotRepo:     slotRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute переводит подтвержденную заявку в cancelled.
// Все способы доступа сходятся в одном переходе: место отработки освобождается
// ровно один раз, связанный пропуск возвращается в pending.
// Порядок блокировок: пропуск, заявка, слот.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим заявку без блокировки, чтобы узнать id и пропуск
	found, err := uc.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	reason := reasonFor(req)
	now := uc.timeProvider.Now()

	uc.logger.Info("CancelBooking: request id=%s, reason=%s", found.ID, reason)

	var (
		booking *domain.MakeupRequest
		absence *domain.Absence
		slot    *domain.Slot
	)

	// 3. Транзакция
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		absence = nil

		// 3.1. Блокируем связанный пропуск
		if found.IsLinked() {
			locked, err := uc.absenceRepo.LockByID(txCtx, *found.AbsenceID)
			if err != nil {
				uc.logger.Error("CancelBooking: failed to lock absence id=%s: %v", *found.AbsenceID, err)
				return fmt.Errorf("%w: failed to lock absence: %w", ErrInternal, err)
			}
			absence = locked
		}

		// 3.2. Блокируем заявку
		locked, err := uc.requestRepo.LockByID(txCtx, found.ID)
		if err != nil {
			if errors.Is(err, makeupRepo.ErrRequestNotFound) {
				return ErrRequestNotFound
			}
			uc.logger.Error("CancelBooking: failed to lock request id=%s: %v", found.ID, err)
			return fmt.Errorf("%w: failed to lock request: %w", ErrInternal, err)
		}

		// 3.3. Проверка кода подтверждения (гостевой доступ по id)
		if req.RequestID != "" && !req.ByAdmin && ptr.Deref(locked.ConfirmCode, "") != req.ConfirmCode {
			uc.logger.Warn("CancelBooking: confirm code mismatch for request id=%s", locked.ID)
			return ErrRequestNotFound
		}

		// 3.4. Ссылка одноразовая: повтор попадает сюда
		if !locked.IsConfirmed() {
			uc.logger.Warn("CancelBooking: request id=%s already %s", locked.ID, locked.Status)
			return ErrAlreadyProcessed
		}

		// 3.5. Блокируем слот и освобождаем место отработки
		target, err := uc.slotRepo.LockByID(txCtx, locked.SlotID)
		if err != nil {
			uc.logger.Error("CancelBooking: failed to lock slot id=%s: %v", locked.SlotID, err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}
		target.ReleaseMakeupSeat()

		// 3.6. Заявка становится терминальной
		if err := uc.requestRepo.MarkCancelled(txCtx, locked.ID, reason, now); err != nil {
			uc.logger.Error("CancelBooking: failed to cancel request id=%s: %v", locked.ID, err)
			return fmt.Errorf("%w: failed to cancel request: %w", ErrInternal, err)
		}

		// 3.7. Сохраняем счетчик
		if err := uc.slotRepo.UpdateCounters(txCtx, target.ID, target.CapacityCurrent, target.CapacityMakeupUsed); err != nil {
			uc.logger.Error("CancelBooking: failed to update slot id=%s counters: %v", target.ID, err)
			return fmt.Errorf("%w: failed to update slot counters: %w", ErrInternal, err)
		}

		// 3.8. Пропуск снова ждет записи на отработку
		if absence != nil && absence.Status == domain.AbsenceStatusMakeupConfirmed {
			if err := uc.absenceRepo.UpdateStatus(txCtx, absence.ID, domain.AbsenceStatusPending, nil, now); err != nil {
				uc.logger.Error("CancelBooking: failed to reopen absence id=%s: %v", absence.ID, err)
				return fmt.Errorf("%w: failed to reopen absence: %w", ErrInternal, err)
			}
			absence.Status = domain.AbsenceStatusPending
		}

		booking = locked
		slot = target
		return nil
	})

	if err != nil {
		return nil, err
	}

	capacity := slot.Capacity()
	uc.logger.Info("CancelBooking: request id=%s cancelled (%s), slot id=%s %s",
		booking.ID, reason, slot.ID, capacity.Label())

	resp := &Response{
		RequestID:    booking.ID,
		Status:       string(domain.RequestStatusCancelled),
		CancelReason: string(reason),
		CancelledAt:  now,
		AbsenceID:    booking.AbsenceID,
		SlotID:       slot.ID,
		Remaining:    capacity.Remaining,
		Level:        capacity.Level,
	}
	if absence != nil {
		resp.AbsenceStatus = string(absence.Status)
		resp.ResumeToken = absence.ResumeToken
	}

	// 4. Уведомление после коммита
	if booking.HasContact() {
		kind := mailer.KindMakeupCancelled
		if reason == domain.CancelReasonDeclined {
			kind = mailer.KindMakeupDeclined
		}

		uc.notifier.Notify(ctx, kind, *booking.ContactEmail, mailer.Payload{
			ChildName:    booking.ChildName,
			ClassBand:    string(booking.ClassBand),
			ConfirmCode:  ptr.Deref(booking.ConfirmCode, ""),
			ResumeToken:  resp.ResumeToken,
			SlotStartsAt: booking.SlotStartsAt,
			CourseLabel:  slot.CourseLabel,
			Reason:       string(reason),
		})
	}

	return resp, nil
}

// resolve находит заявку по токену или id без блокировки
func (uc *UseCase) resolve(ctx context.Context, req *Request) (*domain.MakeupRequest, error) {
	var (
		found *domain.MakeupRequest
		err   error
	)

	switch {
	case req.CancelToken != "":
		found, err = uc.requestRepo.GetByCancelToken(ctx, req.CancelToken)
	case req.DeclineToken != "":
		found, err = uc.requestRepo.GetByDeclineToken(ctx, req.DeclineToken)
	default:
		found, err = uc.requestRepo.GetByID(ctx, req.RequestID)
	}

	if err != nil {
		if errors.Is(err, makeupRepo.ErrRequestNotFound) {
			uc.logger.Warn("CancelBooking: request not found")
			return nil, ErrRequestNotFound
		}
		uc.logger.Error("CancelBooking: failed to find request: %v", err)
		return nil, fmt.Errorf("%w: failed to find request: %w", ErrInternal, err)
	}

	return found, nil
}
