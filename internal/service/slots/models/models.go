package models

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// CreateSlotRequest запрос на создание одного слота
type CreateSlotRequest struct {
	LessonDate      string `json:"lessonDate" validate:"required"` // YYYY-MM-DD
	StartTime       string `json:"startTime" validate:"required"`  // HH:MM
	CourseLabel     string `json:"courseLabel" validate:"max=100"`
	ClassBand       string `json:"classBand" validate:"required"`
	CapacityLimit   int    `json:"capacityLimit" validate:"min=1,max=200"`
	CapacityCurrent int    `json:"capacityCurrent" validate:"min=0"`
}

// CreateRecurringRequest запрос на пакетное создание слотов
// Создается по одному слоту на каждую комбинацию (неделя, время, уровень).
// Если указан CourseID, пустые поля заполняются из курса.
type CreateRecurringRequest struct {
	StartDate       string   `json:"startDate" validate:"required"`
	Weeks           int      `json:"weeks" validate:"min=1,max=52"`
	StartTimes      []string `json:"startTimes,omitempty"`
	ClassBands      []string `json:"classBands,omitempty"`
	CourseID        *string  `json:"courseId,omitempty"`
	CourseLabel     string   `json:"courseLabel,omitempty" validate:"max=100"`
	CapacityLimit   int      `json:"capacityLimit,omitempty" validate:"min=0,max=200"`
	CapacityCurrent int      `json:"capacityCurrent" validate:"min=0"`
}

// RecurringResponse результат пакетного создания
type RecurringResponse struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"` // уже существовали
}

// UpdateSlotRequest изменение слота, обновляются только переданные поля
// ApplyToFuture повторяет изменения лимита и названия курса на будущих слотах
// с тем же днем недели, временем, уровнем и курсом
type UpdateSlotRequest struct {
	LessonDate      *string `json:"lessonDate,omitempty"`
	StartTime       *string `json:"startTime,omitempty"`
	CourseLabel     *string `json:"courseLabel,omitempty" validate:"omitempty,max=100"`
	ClassBand       *string `json:"classBand,omitempty"`
	CapacityLimit   *int    `json:"capacityLimit,omitempty" validate:"omitempty,min=1,max=200"`
	CapacityCurrent *int    `json:"capacityCurrent,omitempty" validate:"omitempty,min=0"`
	ApplyToFuture   bool    `json:"applyToFuture"`
}

// UpdateSlotResponse результат изменения
type UpdateSlotResponse struct {
	Slot             *SlotResponse `json:"slot"`
	AppliedTo        []string      `json:"appliedTo,omitempty"`
	SkippedFuture    []string      `json:"skippedFuture,omitempty"` // лимит не вмещает их отработки
	RequestsResynced int64         `json:"requestsResynced"`
}

// ListSlotsRequest фильтр списка слотов
type ListSlotsRequest struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	ClassBand     *string
	OnlyAvailable bool
}

// SlotResponse слот с посчитанной доступностью
type SlotResponse struct {
	ID                 string    `json:"id"`
	LessonDate         string    `json:"lessonDate"`
	StartTime          string    `json:"startTime"`
	StartsAt           time.Time `json:"startsAt"`
	CourseLabel        string    `json:"courseLabel"`
	ClassBand          string    `json:"classBand"`
	CapacityLimit      int       `json:"capacityLimit"`
	CapacityCurrent    int       `json:"capacityCurrent"`
	CapacityMakeupUsed int       `json:"capacityMakeupUsed"`
	Remaining          int       `json:"remaining"`
	Availability       string    `json:"availability"`
	Label              string    `json:"label"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []*SlotResponse `json:"slots"`
	Total int             `json:"total"`
}

// ReconcileResponse результат сверки счетчика отработок
type ReconcileResponse struct {
	SlotID    string `json:"slotId"`
	Confirmed int    `json:"confirmed"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
	Changed   bool   `json:"changed"`
}

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	capacity := s.Capacity()
	return &SlotResponse{
		ID:                 s.ID,
		LessonDate:         s.LessonDate.Format(domain.DateFormat),
		StartTime:          s.StartTime.String(),
		StartsAt:           s.StartsAt,
		CourseLabel:        s.CourseLabel,
		ClassBand:          string(s.ClassBand),
		CapacityLimit:      s.CapacityLimit,
		CapacityCurrent:    s.CapacityCurrent,
		CapacityMakeupUsed: s.CapacityMakeupUsed,
		Remaining:          capacity.Remaining,
		Availability:       string(capacity.Level),
		Label:              capacity.Label(),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список слотов
func FromDomainSlotList(slots []*domain.Slot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]*SlotResponse, 0, len(slots)),
		Total: len(slots),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, FromDomainSlot(s))
	}
	return resp
}

// DeleteSlotResponse результат удаления слота
type DeleteSlotResponse struct {
	SlotID           string   `json:"slotId"`
	RequestsDeleted  int64    `json:"requestsDeleted"`
	AbsencesReopened []string `json:"absencesReopened"` // пропуски, вернувшиеся в pending
}
