package cancel_absence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	absenceRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/absence"
	"github.com/m04kA/kesseki-furikae/internal/integrations/mailer"
)

// UseCase use case отмены пропуска
type UseCase struct {
	absenceRepo  AbsenceRepository
	requestRepo  RequestRepository
	slotRepo     SlotRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	absenceRepo AbsenceRepository,
	requestRepo RequestRepository,
	slotRepo SlotRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		absenceRepo:  absenceRepo,
		requestRepo:  requestRepo,
		slotRepo:     slotRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute отменяет пропуск: возвращает место в исходный слот и каскадно
// отменяет подтвержденные заявки на отработку, освобождая их места.
// Все изменения выполняются в одной транзакции. Порядок блокировок:
// пропуск, затем слоты по возрастанию id.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelAbsence: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим id пропуска (поиск по токену без блокировки)
	absenceID, err := uc.resolveAbsenceID(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelAbsence: absence id=%s, admin=%t", absenceID, req.ByAdmin)

	reason := domain.CancelReasonByGuardian
	if req.ByAdmin {
		reason = domain.CancelReasonByAdmin
	}

	now := uc.timeProvider.Now()

	var (
		absence   *domain.Absence
		cancelled []string
	)

	// 3. Транзакция
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cancelled = nil

		// 3.1. Блокируем пропуск
		locked, err := uc.absenceRepo.LockByID(txCtx, absenceID)
		if err != nil {
			if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
				return ErrAbsenceNotFound
			}
			uc.logger.Error("CancelAbsence: failed to lock absence id=%s: %v", absenceID, err)
			return fmt.Errorf("%w: failed to lock absence: %w", ErrInternal, err)
		}

		// 3.2. Проверка кода подтверждения (гостевой доступ по id)
		if req.ResumeToken == "" && !req.ByAdmin && locked.ConfirmCode != req.ConfirmCode {
			uc.logger.Warn("CancelAbsence: confirm code mismatch for absence id=%s", absenceID)
			return ErrAbsenceNotFound
		}

		// 3.3. Терминальный пропуск повторно не отменяется
		if locked.IsTerminal() {
			uc.logger.Warn("CancelAbsence: absence id=%s already %s", absenceID, locked.Status)
			return ErrAlreadyCancelled
		}

		// 3.4. Подтвержденные заявки этого пропуска
		requests, err := uc.requestRepo.ListByAbsence(txCtx, absenceID)
		if err != nil {
			uc.logger.Error("CancelAbsence: failed to list requests of absence id=%s: %v", absenceID, err)
			return fmt.Errorf("%w: failed to list requests: %w", ErrInternal, err)
		}

		confirmed := make([]*domain.MakeupRequest, 0, len(requests))
		for _, r := range requests {
			if r.IsConfirmed() {
				confirmed = append(confirmed, r)
			}
		}

		// 3.5. Блокируем исходный слот и слоты заявок по возрастанию id
		slots, err := uc.lockSlots(txCtx, locked.OriginalSlotID, confirmed)
		if err != nil {
			return err
		}
		original := slots[locked.OriginalSlotID]

		// 3.6. Правило 10 минут: позже отмена возможна, только если место еще свободно
		if !locked.InGracePeriod(now) && !original.HasFreeRegularSeat() {
			uc.logger.Warn("CancelAbsence: late cancellation of absence id=%s blocked, slot id=%s current=%d/%d",
				absenceID, original.ID, original.CapacityCurrent, original.CapacityLimit)
			return ErrLateCancellation
		}

		// 3.7. Каскадная отмена заявок с освобождением мест отработки
		for _, r := range confirmed {
			slots[r.SlotID].ReleaseMakeupSeat()
			if err := uc.requestRepo.MarkCancelled(txCtx, r.ID, domain.CancelReasonAbsenceCancelled, now); err != nil {
				uc.logger.Error("CancelAbsence: failed to cancel request id=%s: %v", r.ID, err)
				return fmt.Errorf("%w: failed to cancel request: %w", ErrInternal, err)
			}
			cancelled = append(cancelled, r.ID)
		}

		// 3.8. Возвращаем место записанного ученика
		original.RestoreEnrolledSeat()

		// 3.9. Сохраняем счетчики всех затронутых слотов
		for _, id := range sortedKeys(slots) {
			slot := slots[id]
			if err := uc.slotRepo.UpdateCounters(txCtx, slot.ID, slot.CapacityCurrent, slot.CapacityMakeupUsed); err != nil {
				uc.logger.Error("CancelAbsence: failed to update slot id=%s counters: %v", slot.ID, err)
				return fmt.Errorf("%w: failed to update slot counters: %w", ErrInternal, err)
			}
		}

		// 3.10. Пропуск становится терминальным
		if err := uc.absenceRepo.UpdateStatus(txCtx, absenceID, domain.AbsenceStatusCancelled, &reason, now); err != nil {
			uc.logger.Error("CancelAbsence: failed to update absence id=%s: %v", absenceID, err)
			return fmt.Errorf("%w: failed to update absence: %w", ErrInternal, err)
		}

		absence = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelAbsence: absence id=%s cancelled (%s), requests cancelled=%d",
		absenceID, reason, len(cancelled))

	// 4. Уведомление после коммита
	if absence.HasContact() {
		uc.notifier.Notify(ctx, mailer.KindAbsenceCancelled, *absence.ContactEmail, mailer.Payload{
			ChildName:   absence.ChildName,
			ClassBand:   string(absence.ClassBand),
			AbsentDate:  absence.AbsentDate,
			ConfirmCode: absence.ConfirmCode,
			Reason:      string(reason),
		})
	}

	return &Response{
		AbsenceID:         absenceID,
		Status:            string(domain.AbsenceStatusCancelled),
		CancelReason:      string(reason),
		CancelledAt:       now,
		CancelledRequests: cancelled,
	}, nil
}

func (uc *UseCase) resolveAbsenceID(ctx context.Context, req *Request) (string, error) {
	if req.ResumeToken == "" {
		return req.AbsenceID, nil
	}

	absence, err := uc.absenceRepo.GetByResumeToken(ctx, req.ResumeToken)
	if err != nil {
		if errors.Is(err, absenceRepo.ErrAbsenceNotFound) {
			uc.logger.Warn("CancelAbsence: unknown resume token")
			return "", ErrAbsenceNotFound
		}
		uc.logger.Error("CancelAbsence: failed to find absence by token: %v", err)
		return "", fmt.Errorf("%w: failed to find absence: %w", ErrInternal, err)
	}
	return absence.ID, nil
}

// lockSlots блокирует исходный слот и целевые слоты заявок в порядке возрастания id
func (uc *UseCase) lockSlots(ctx context.Context, originalID string, requests []*domain.MakeupRequest) (map[string]*domain.Slot, error) {
	slots := map[string]*domain.Slot{originalID: nil}
	for _, r := range requests {
		slots[r.SlotID] = nil
	}

	for _, id := range sortedKeys(slots) {
		slot, err := uc.slotRepo.LockByID(ctx, id)
		if err != nil {
			uc.logger.Error("CancelAbsence: failed to lock slot id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}
		slots[id] = slot
	}

	return slots, nil
}

func sortedKeys(slots map[string]*domain.Slot) []string {
	ids := make([]string, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
