package search_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	searchSlots "github.com/m04kA/kesseki-furikae/internal/usecase/search_slots"
)

// SearchSlotsResponse HTTP response model
type SearchSlotsResponse struct {
	ClassBand  string          `json:"classBand"`
	AbsentDate string          `json:"absentDate"`
	WindowFrom string          `json:"windowFrom"`
	WindowTo   string          `json:"windowTo"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot слот для отработки с уровнем доступности
type AvailableSlot struct {
	SlotID        string `json:"slotId"`
	LessonDate    string `json:"lessonDate"`
	StartTime     string `json:"startTime"`
	StartsAt      string `json:"startsAt"`
	CourseLabel   string `json:"courseLabel"`
	ClassBand     string `json:"classBand"`
	CapacityLimit int    `json:"capacityLimit"`
	Remaining     int    `json:"remaining"`
	Availability  string `json:"availability"` // open / low / full
	Label         string `json:"label"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *searchSlots.Response) *SearchSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			SlotID:        slot.SlotID,
			LessonDate:    slot.LessonDate.Format(domain.DateFormat),
			StartTime:     slot.StartTime.String(),
			StartsAt:      slot.StartsAt.Format(time.RFC3339),
			CourseLabel:   slot.CourseLabel,
			ClassBand:     string(slot.ClassBand),
			CapacityLimit: slot.CapacityLimit,
			Remaining:     slot.Remaining,
			Availability:  string(slot.Level),
			Label:         slot.Label,
		}
	}

	return &SearchSlotsResponse{
		ClassBand:  string(resp.ClassBand),
		AbsentDate: resp.AbsentDate.Format(domain.DateFormat),
		WindowFrom: resp.WindowFrom.Format(domain.DateFormat),
		WindowTo:   resp.WindowTo.Format(domain.DateFormat),
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(classBand, absentDateStr, excludeSlotID, onlyAvailable string) (*searchSlots.Request, error) {
	absentDate, err := domain.ParseDate(absentDateStr)
	if err != nil {
		return nil, err
	}

	req := &searchSlots.Request{
		ClassBand:     domain.ClassBand(classBand),
		AbsentDate:    absentDate,
		ExcludeSlotID: excludeSlotID,
	}

	if onlyAvailable != "" {
		req.OnlyAvailable, err = strconv.ParseBool(onlyAvailable)
		if err != nil {
			return nil, err
		}
	}

	return req, nil
}
