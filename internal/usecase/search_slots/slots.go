package search_slots

import (
	"sort"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// buildSlots переводит слоты в результат поиска с классификацией доступности
// Доступность считается только через domain.Capacity, как и при бронировании
func buildSlots(slots []*domain.Slot, excludeID string, onlyAvailable bool) []Slot {
	result := make([]Slot, 0, len(slots))

	for _, slot := range slots {
		if slot.ID == excludeID {
			continue
		}

		capacity := slot.Capacity()
		if onlyAvailable && !capacity.CanBook() {
			continue
		}

		result = append(result, Slot{
			SlotID:        slot.ID,
			LessonDate:    slot.LessonDate,
			StartTime:     slot.StartTime,
			StartsAt:      slot.StartsAt,
			CourseLabel:   slot.CourseLabel,
			ClassBand:     slot.ClassBand,
			CapacityLimit: slot.CapacityLimit,
			Remaining:     capacity.Remaining,
			Level:         capacity.Level,
			Label:         capacity.Label(),
		})
	}

	// Сортируем по времени начала, при равенстве по id для стабильного порядка
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].StartsAt.Equal(result[j].StartsAt) {
			return result[i].StartsAt.Before(result[j].StartsAt)
		}
		return result[i].SlotID < result[j].SlotID
	})

	return result
}
