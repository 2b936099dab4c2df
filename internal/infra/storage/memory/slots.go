package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	slotRepo "github.com/m04kA/kesseki-furikae/internal/infra/storage/slot"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

// SlotRepository слоты в памяти; ошибки совпадают с postgres-репозиторием
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.slots {
		if sameNaturalKey(&existing, slot.LessonDate, slot.StartTime, slot.ClassBand) {
			return nil, slotRepo.ErrDuplicateSlot
		}
	}

	slot.ID = ensureID(slot.ID)
	now := time.Now()
	slot.CreatedAt, slot.UpdatedAt = now, now
	r.store.slots[slot.ID] = *slot

	return slot, nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return &slot, nil
}

// LockByID в памяти эквивалентен GetByID: транзакция уже держит эксклюзивную блокировку
func (r *SlotRepository) LockByID(ctx context.Context, id string) (*domain.Slot, error) {
	return r.GetByID(ctx, id)
}

func (r *SlotRepository) GetByNaturalKey(ctx context.Context, date time.Time, startTime types.TimeString, band domain.ClassBand) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	for _, slot := range r.store.slots {
		if sameNaturalKey(&slot, date, startTime, band) {
			return &slot, nil
		}
	}
	return nil, slotRepo.ErrSlotNotFound
}

func (r *SlotRepository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	defer r.store.lock(ctx)()

	result := make([]*domain.Slot, 0)
	for _, slot := range r.store.slots {
		if !matchSlot(&slot, filter) {
			continue
		}
		slot := slot
		result = append(result, &slot)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartsAt.Equal(result[j].StartsAt) {
			return result[i].StartsAt.Before(result[j].StartsAt)
		}
		return result[i].ClassBand < result[j].ClassBand
	})

	return result, nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	defer r.store.lock(ctx)()

	existing, ok := r.store.slots[slot.ID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}

	for id, other := range r.store.slots {
		if id != slot.ID && sameNaturalKey(&other, slot.LessonDate, slot.StartTime, slot.ClassBand) {
			return nil, slotRepo.ErrDuplicateSlot
		}
	}

	slot.CreatedAt = existing.CreatedAt
	slot.UpdatedAt = time.Now()
	r.store.slots[slot.ID] = *slot

	return slot, nil
}

func (r *SlotRepository) UpdateCounters(ctx context.Context, id string, current, makeupUsed int) error {
	defer r.store.lock(ctx)()

	slot, ok := r.store.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}

	slot.CapacityCurrent = current
	slot.CapacityMakeupUsed = makeupUsed
	slot.UpdatedAt = time.Now()
	r.store.slots[id] = slot

	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.slots[id]; !ok {
		return slotRepo.ErrSlotNotFound
	}
	delete(r.store.slots, id)

	return nil
}

func sameNaturalKey(slot *domain.Slot, date time.Time, startTime types.TimeString, band domain.ClassBand) bool {
	return domain.SameDate(slot.LessonDate, date) &&
		slot.StartTime.Equal(startTime) &&
		slot.ClassBand == band
}

func matchSlot(slot *domain.Slot, filter domain.SlotFilter) bool {
	date := domain.DateOnly(slot.LessonDate)

	if filter.DateFrom != nil && date.Before(domain.DateOnly(*filter.DateFrom)) {
		return false
	}
	if filter.DateTo != nil && date.After(domain.DateOnly(*filter.DateTo)) {
		return false
	}
	if filter.ClassBand != nil && slot.ClassBand != *filter.ClassBand {
		return false
	}
	if filter.StartsAfter != nil && !slot.StartsAt.After(*filter.StartsAfter) {
		return false
	}
	if filter.StartsBefore != nil && !slot.StartsAt.Before(*filter.StartsBefore) {
		return false
	}
	if filter.StartTime != nil && !slot.StartTime.Equal(*filter.StartTime) {
		return false
	}
	if filter.CourseLabel != nil && slot.CourseLabel != *filter.CourseLabel {
		return false
	}
	if filter.Weekday != nil && date.Weekday() != *filter.Weekday {
		return false
	}
	if filter.OnlyAvailable && !slot.Capacity().CanBook() {
		return false
	}
	return true
}
