package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	absenceRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/absence"
)

// AbsenceRepository пропуски в памяти
type AbsenceRepository struct {
	store *Store
}

func (r *AbsenceRepository) Create(ctx context.Context, absence *domain.Absence) (*domain.Absence, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.absences {
		if existing.ResumeToken == absence.ResumeToken {
			return nil, absenceRepo.ErrDuplicateToken
		}
	}

	absence.ID = ensureID(absence.ID)
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = time.Now()
	}
	absence.UpdatedAt = absence.CreatedAt
	r.store.absences[absence.ID] = *absence

	return absence, nil
}

func (r *AbsenceRepository) GetByID(ctx context.Context, id string) (*domain.Absence, error) {
	defer r.store.lock(ctx)()

	absence, ok := r.store.absences[id]
	if !ok {
		return nil, absenceRepo.ErrAbsenceNotFound
	}
	return &absence, nil
}

func (r *AbsenceRepository) LockByID(ctx context.Context, id string) (*domain.Absence, error) {
	return r.GetByID(ctx, id)
}

func (r *AbsenceRepository) GetByResumeToken(ctx context.Context, token string) (*domain.Absence, error) {
	defer r.store.lock(ctx)()

	for _, absence := range r.store.absences {
		if absence.ResumeToken == token {
			return &absence, nil
		}
	}
	return nil, absenceRepo.ErrAbsenceNotFound
}

func (r *AbsenceRepository) ListByConfirmCode(ctx context.Context, code string) ([]*domain.Absence, error) {
	defer r.store.lock(ctx)()

	result := make([]*domain.Absence, 0)
	for _, absence := range r.store.absences {
		if absence.ConfirmCode == code {
			absence := absence
			result = append(result, &absence)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *AbsenceRepository) CountByOriginalSlot(ctx context.Context, slotID string) (int, error) {
	defer r.store.lock(ctx)()

	count := 0
	for _, absence := range r.store.absences {
		if absence.OriginalSlotID == slotID {
			count++
		}
	}
	return count, nil
}

func (r *AbsenceRepository) ExistsOpenForChild(ctx context.Context, slotID, childName string) (bool, error) {
	defer r.store.lock(ctx)()

	for _, absence := range r.store.absences {
		if absence.OriginalSlotID == slotID && absence.ChildName == childName && !absence.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *AbsenceRepository) List(ctx context.Context, filter domain.AbsenceFilter) ([]*domain.Absence, error) {
	defer r.store.lock(ctx)()

	result := make([]*domain.Absence, 0)
	for _, absence := range r.store.absences {
		if !matchAbsence(&absence, filter) {
			continue
		}
		absence := absence
		result = append(result, &absence)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AbsentDate.Equal(result[j].AbsentDate) {
			return result[i].AbsentDate.After(result[j].AbsentDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *AbsenceRepository) UpdateStatus(ctx context.Context, id string, status domain.AbsenceStatus, reason *domain.CancelReason, at time.Time) error {
	defer r.store.lock(ctx)()

	absence, ok := r.store.absences[id]
	if !ok {
		return absenceRepo.ErrAbsenceNotFound
	}

	absence.Status = status
	absence.UpdatedAt = at
	if status == domain.AbsenceStatusCancelled {
		absence.CancelReason = reason
		absence.CancelledAt = &at
	} else {
		absence.CancelReason = nil
		absence.CancelledAt = nil
	}
	r.store.absences[id] = absence

	return nil
}

func matchAbsence(absence *domain.Absence, filter domain.AbsenceFilter) bool {
	date := domain.DateOnly(absence.AbsentDate)

	if filter.DateFrom != nil && date.Before(domain.DateOnly(*filter.DateFrom)) {
		return false
	}
	if filter.DateTo != nil && date.After(domain.DateOnly(*filter.DateTo)) {
		return false
	}
	if filter.ClassBand != nil && absence.ClassBand != *filter.ClassBand {
		return false
	}
	if filter.Status != nil && absence.Status != *filter.Status {
		return false
	}
	if filter.OriginalSlotID != nil && absence.OriginalSlotID != *filter.OriginalSlotID {
		return false
	}
	return true
}
