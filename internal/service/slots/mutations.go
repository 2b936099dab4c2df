package slots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/internal/service/slots/models"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// slotEdit разобранные поля UpdateSlotRequest
type slotEdit struct {
	req       *models.UpdateSlotRequest
	date      *time.Time
	startTime *types.TimeString
	band      *domain.ClassBand
	label     *string
}

func parseEdit(req *models.UpdateSlotRequest) (*slotEdit, error) {
	edit := &slotEdit{req: req}

	if req.LessonDate != nil {
		date, err := parseDate("lessonDate", *req.LessonDate)
		if err != nil {
			return nil, err
		}
		edit.date = &date
	}

	if req.StartTime != nil {
		t, err := parseTime("startTime", *req.StartTime)
		if err != nil {
			return nil, err
		}
		edit.startTime = &t
	}

	if req.ClassBand != nil {
		band, err := parseBand(*req.ClassBand)
		if err != nil {
			return nil, err
		}
		edit.band = &band
	}

	if req.CourseLabel != nil {
		label := strings.TrimSpace(*req.CourseLabel)
		edit.label = &label
	}

	return edit, nil
}

// Update изменяет слот. Смена даты или времени пересчитывает StartsAt и
// в той же транзакции обновляет копию времени начала в заявках.
// С ApplyToFuture изменения лимита и курса повторяются на будущих слотах серии.
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateSlotRequest) (*models.UpdateSlotResponse, error) {
	s.logger.Info("Update: slot id=%s, applyToFuture=%t", id, req.ApplyToFuture)

	// 1. Разбор полей
	edit, err := parseEdit(req)
	if err != nil {
		s.logger.Warn("Update: invalid input for slot id=%s: %v", id, err)
		return nil, err
	}

	resp := &models.UpdateSlotResponse{}

	// 2. Транзакция
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		resp.AppliedTo, resp.SkippedFuture, resp.RequestsResynced = nil, nil, 0

		// 2.1. Слот и его серия до изменения
		current, err := s.slotRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapSlotError("Update", id, err)
		}

		var future []string
		if req.ApplyToFuture && (req.CapacityLimit != nil || edit.label != nil) {
			future, err = s.findSeries(txCtx, current)
			if err != nil {
				return err
			}
		}

		// 2.2. Блокируем слот и серию по возрастанию id
		locked, err := s.lockSorted(txCtx, append(future, id))
		if err != nil {
			return s.mapSlotError("Update", id, err)
		}

		var slot *domain.Slot
		series := make([]*domain.Slot, 0, len(future))
		for _, l := range locked {
			if l.ID == id {
				slot = l
			} else {
				series = append(series, l)
			}
		}

		// 2.3. Применяем изменения к самому слоту
		oldStartsAt := slot.StartsAt
		if err := s.applyEdit(txCtx, slot, edit); err != nil {
			return err
		}

		updated, err := s.slotRepo.Update(txCtx, slot)
		if err != nil {
			if errors.Is(err, slotRepo.ErrDuplicateSlot) {
				s.logger.Warn("Update: slot id=%s collides with an existing slot", id)
				return ErrDuplicateSlot
			}
			s.logger.Error("Update: failed to update slot id=%s: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
		}
		resp.Slot = models.FromDomainSlot(updated)

		// 2.4. Копия времени начала в заявках
		if !updated.StartsAt.Equal(oldStartsAt) {
			resynced, err := s.requestRepo.UpdateSlotStartsAt(txCtx, updated.ID, updated.StartsAt)
			if err != nil {
				s.logger.Error("Update: failed to resync requests of slot id=%s: %v", id, err)
				return fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
			}
			resp.RequestsResynced = resynced
		}

		// 2.5. Будущие слоты серии: только лимит и курс
		for _, other := range series {
			if req.CapacityLimit != nil {
				other.CapacityLimit = *req.CapacityLimit
			}
			if edit.label != nil {
				other.CourseLabel = *edit.label
			}

			if err := validateCounters(other.CapacityLimit, other.CapacityCurrent, other.CapacityMakeupUsed); err != nil {
				s.logger.Warn("Update: future slot id=%s skipped: %v", other.ID, err)
				resp.SkippedFuture = append(resp.SkippedFuture, other.ID)
				continue
			}

			if _, err := s.slotRepo.Update(txCtx, other); err != nil {
				s.logger.Error("Update: failed to update future slot id=%s: %v", other.ID, err)
				return fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
			}
			resp.AppliedTo = append(resp.AppliedTo, other.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: slot id=%s updated, future applied=%d, skipped=%d, requests resynced=%d",
		id, len(resp.AppliedTo), len(resp.SkippedFuture), resp.RequestsResynced)
	return resp, nil
}

// applyEdit меняет поля заблокированного слота и проверяет инварианты
func (s *Service) applyEdit(ctx context.Context, slot *domain.Slot, edit *slotEdit) error {
	req := edit.req

	if edit.label != nil {
		slot.CourseLabel = *edit.label
	}

	if edit.band != nil && *edit.band != slot.ClassBand {
		inUse, err := s.slotInUse(ctx, slot.ID)
		if err != nil {
			return err
		}
		if inUse {
			s.logger.Warn("Update: slot id=%s is in use, class band cannot change", slot.ID)
			return ErrSlotInUse
		}
		slot.ClassBand = *edit.band
	}

	// Пропуск хранит дату урока: перенос разошелся бы с absentDate
	if edit.date != nil && !domain.SameDate(*edit.date, slot.LessonDate) {
		absences, err := s.countAbsences(ctx, slot.ID)
		if err != nil {
			return err
		}
		if absences > 0 {
			s.logger.Warn("Update: slot id=%s has %d absences, lesson date cannot change", slot.ID, absences)
			return ErrSlotInUse
		}
		slot.LessonDate = *edit.date
	}
	if edit.startTime != nil {
		slot.StartTime = *edit.startTime
	}
	slot.ComputeStartsAt(s.location)

	if req.CapacityLimit != nil {
		slot.CapacityLimit = *req.CapacityLimit
	}
	if req.CapacityCurrent != nil {
		slot.CapacityCurrent = *req.CapacityCurrent
	}

	if err := validateCounters(slot.CapacityLimit, slot.CapacityCurrent, slot.CapacityMakeupUsed); err != nil {
		s.logger.Warn("Update: slot id=%s rejected: %v", slot.ID, err)
		return err
	}

	return nil
}

// slotInUse true, если на слот ссылаются пропуски или подтвержденные заявки
func (s *Service) slotInUse(ctx context.Context, id string) (bool, error) {
	absences, err := s.countAbsences(ctx, id)
	if err != nil {
		return false, err
	}

	confirmed, err := s.requestRepo.CountConfirmedBySlot(ctx, id)
	if err != nil {
		s.logger.Error("Update: failed to count requests of slot id=%s: %v", id, err)
		return false, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	return absences > 0 || confirmed > 0, nil
}

func (s *Service) countAbsences(ctx context.Context, id string) (int, error) {
	absences, err := s.absenceRepo.CountByOriginalSlot(ctx, id)
	if err != nil {
		s.logger.Error("Update: failed to count absences of slot id=%s: %v", id, err)
		return 0, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}
	return absences, nil
}

// findSeries находит будущие слоты с тем же днем недели, временем, уровнем и курсом
func (s *Service) findSeries(ctx context.Context, slot *domain.Slot) ([]string, error) {
	from := slot.LessonDate.AddDate(0, 0, 1)
	weekday := slot.LessonDate.Weekday()
	startTime := slot.StartTime
	band := slot.ClassBand
	label := slot.CourseLabel

	series, err := s.slotRepo.List(ctx, domain.SlotFilter{
		DateFrom:    &from,
		Weekday:     &weekday,
		StartTime:   &startTime,
		ClassBand:   &band,
		CourseLabel: &label,
	})
	if err != nil {
		s.logger.Error("Update: failed to list series of slot id=%s: %v", slot.ID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	ids := make([]string, 0, len(series))
	for _, other := range series {
		if other.ID != slot.ID {
			ids = append(ids, other.ID)
		}
	}
	return ids, nil
}

// Delete удаляет слот. Удаление запрещено, пока на слот ссылаются пропуски.
// Заявки на слот удаляются каскадно, их пропуски возвращаются в pending.
// Порядок блокировок: пропуски, затем слот.
func (s *Service) Delete(ctx context.Context, id string) (*models.DeleteSlotResponse, error) {
	s.logger.Info("Delete: slot id=%s", id)

	resp := &models.DeleteSlotResponse{SlotID: id}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		resp.AbsencesReopened = []string{}

		// 1. Пропуски подтвержденных заявок на этот слот
		requests, err := s.requestRepo.ListBySlot(txCtx, id)
		if err != nil {
			s.logger.Error("Delete: failed to list requests of slot id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}

		absenceIDs := make([]string, 0)
		seen := make(map[string]bool)
		for _, r := range requests {
			if r.IsConfirmed() && r.IsLinked() && !seen[*r.AbsenceID] {
				seen[*r.AbsenceID] = true
				absenceIDs = append(absenceIDs, *r.AbsenceID)
			}
		}
		sort.Strings(absenceIDs)

		absences := make([]*domain.Absence, 0, len(absenceIDs))
		for _, absenceID := range absenceIDs {
			absence, err := s.absenceRepo.LockByID(txCtx, absenceID)
			if err != nil {
				s.logger.Error("Delete: failed to lock absence id=%s: %v", absenceID, err)
				return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
			}
			absences = append(absences, absence)
		}

		// 2. Блокируем слот
		if _, err := s.slotRepo.LockByID(txCtx, id); err != nil {
			return s.mapSlotError("Delete", id, err)
		}

		// 3. Слот, который кто-то пропускает, удалить нельзя
		referenced, err := s.absenceRepo.CountByOriginalSlot(txCtx, id)
		if err != nil {
			s.logger.Error("Delete: failed to count absences of slot id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}
		if referenced > 0 {
			s.logger.Warn("Delete: slot id=%s is the original slot of %d absences", id, referenced)
			return ErrSlotReferenced
		}

		// 4. Пропуски снова ждут записи
		now := s.timeProvider.Now()
		for _, absence := range absences {
			if absence.Status != domain.AbsenceStatusMakeupConfirmed {
				continue
			}
			if err := s.absenceRepo.UpdateStatus(txCtx, absence.ID, domain.AbsenceStatusPending, nil, now); err != nil {
				s.logger.Error("Delete: failed to reopen absence id=%s: %v", absence.ID, err)
				return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
			}
			resp.AbsencesReopened = append(resp.AbsencesReopened, absence.ID)
		}

		// 5. Каскад заявок и сам слот
		deleted, err := s.requestRepo.DeleteBySlot(txCtx, id)
		if err != nil {
			s.logger.Error("Delete: failed to delete requests of slot id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
		}
		resp.RequestsDeleted = deleted

		if err := s.slotRepo.Delete(txCtx, id); err != nil {
			return s.mapSlotError("Delete", id, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Delete: slot id=%s deleted, requests=%d, absences reopened=%d",
		id, resp.RequestsDeleted, len(resp.AbsencesReopened))
	return resp, nil
}

// Reconcile пересчитывает capacity_makeup_used по числу подтвержденных заявок
func (s *Service) Reconcile(ctx context.Context, id string) (*models.ReconcileResponse, error) {
	s.logger.Info("Reconcile: slot id=%s", id)

	resp := &models.ReconcileResponse{SlotID: id}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.LockByID(txCtx, id)
		if err != nil {
			return s.mapSlotError("Reconcile", id, err)
		}

		confirmed, err := s.requestRepo.CountConfirmedBySlot(txCtx, id)
		if err != nil {
			s.logger.Error("Reconcile: failed to count requests of slot id=%s: %v", id, err)
			return fmt.Errorf("%w: Reconcile - repository error: %w", ErrInternal, err)
		}

		resp.Confirmed = confirmed
		resp.Before = slot.CapacityMakeupUsed
		resp.After = confirmed
		resp.Changed = resp.Before != resp.After

		if !resp.Changed {
			return nil
		}

		if err := s.slotRepo.UpdateCounters(txCtx, id, slot.CapacityCurrent, confirmed); err != nil {
			s.logger.Error("Reconcile: failed to update slot id=%s counters: %v", id, err)
			return fmt.Errorf("%w: Reconcile - repository error: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Changed {
		s.logger.Warn("Reconcile: slot id=%s makeup_used fixed %d -> %d", id, resp.Before, resp.After)
	}
	return resp, nil
}

func (s *Service) mapSlotError(op, id string, err error) error {
	if errors.Is(err, slotRepo.ErrSlotNotFound) {
		s.logger.Warn("%s: slot id=%s not found", op, id)
		return ErrSlotNotFound
	}
	s.logger.Error("%s: repository error for slot id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
