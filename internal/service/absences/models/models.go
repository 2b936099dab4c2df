package models

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// LookupRequest поиск по коду подтверждения
// Код не уникален, поэтому публичный поиск требует еще и имя ребенка
type LookupRequest struct {
	Code      string `json:"code" validate:"required,len=6,numeric"`
	ChildName string `json:"childName" validate:"max=100"`
}

// ListAbsencesRequest фильтр списка пропусков для администратора
type ListAbsencesRequest struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	ClassBand *string
	Status    *string
}

// SlotSummary пропущенный слот
type SlotSummary struct {
	ID          string    `json:"id"`
	LessonDate  string    `json:"lessonDate"`
	StartTime   string    `json:"startTime"`
	StartsAt    time.Time `json:"startsAt"`
	CourseLabel string    `json:"courseLabel"`
}

// RequestSummary заявка на отработку внутри пропуска
type RequestSummary struct {
	ID           string     `json:"id"`
	ChildName    string     `json:"childName"`
	SlotID       string     `json:"slotId"`
	SlotStartsAt time.Time  `json:"slotStartsAt"`
	Status       string     `json:"status"`
	CancelReason *string    `json:"cancelReason,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// AbsenceResponse пропуск с заявками
// Токен возобновления в ответ не попадает: у владельца ссылки он уже есть
type AbsenceResponse struct {
	ID             string            `json:"id"`
	ChildName      string            `json:"childName"`
	ClassBand      string            `json:"classBand"`
	AbsentDate     string            `json:"absentDate"`
	OriginalSlotID string            `json:"originalSlotId"`
	OriginalSlot   *SlotSummary      `json:"originalSlot,omitempty"`
	ContactEmail   *string           `json:"contactEmail,omitempty"`
	MakeupDeadline string            `json:"makeupDeadline"`
	Status         string            `json:"status"`
	CancelReason   *string           `json:"cancelReason,omitempty"`
	CancelledAt    *time.Time        `json:"cancelledAt,omitempty"`
	Requests       []*RequestSummary `json:"requests"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// AbsenceListResponse список пропусков
type AbsenceListResponse struct {
	Absences []*AbsenceResponse `json:"absences"`
	Total    int                `json:"total"`
}

// LookupResponse результат поиска по коду
// Bookings - записи администратора без пропуска с тем же кодом
type LookupResponse struct {
	Absences []*AbsenceResponse `json:"absences"`
	Bookings []*RequestSummary  `json:"bookings"`
}

// FromDomainAbsence конвертирует domain модель в DTO
func FromDomainAbsence(a *domain.Absence, requests []*domain.MakeupRequest, original *domain.Slot) *AbsenceResponse {
	resp := &AbsenceResponse{
		ID:             a.ID,
		ChildName:      a.ChildName,
		ClassBand:      string(a.ClassBand),
		AbsentDate:     a.AbsentDate.Format(domain.DateFormat),
		OriginalSlotID: a.OriginalSlotID,
		ContactEmail:   a.ContactEmail,
		MakeupDeadline: a.MakeupDeadline.Format(domain.DateFormat),
		Status:         string(a.Status),
		CancelReason:   reasonString(a.CancelReason),
		CancelledAt:    a.CancelledAt,
		Requests:       make([]*RequestSummary, 0, len(requests)),
		CreatedAt:      a.CreatedAt,
	}

	for _, r := range requests {
		resp.Requests = append(resp.Requests, FromDomainRequest(r))
	}

	if original != nil {
		resp.OriginalSlot = &SlotSummary{
			ID:          original.ID,
			LessonDate:  original.LessonDate.Format(domain.DateFormat),
			StartTime:   original.StartTime.String(),
			StartsAt:    original.StartsAt,
			CourseLabel: original.CourseLabel,
		}
	}

	return resp
}

// FromDomainRequest конвертирует заявку
func FromDomainRequest(r *domain.MakeupRequest) *RequestSummary {
	return &RequestSummary{
		ID:           r.ID,
		ChildName:    r.ChildName,
		SlotID:       r.SlotID,
		SlotStartsAt: r.SlotStartsAt,
		Status:       string(r.Status),
		CancelReason: reasonString(r.CancelReason),
		CancelledAt:  r.CancelledAt,
		CreatedAt:    r.CreatedAt,
	}
}

func reasonString(r *domain.CancelReason) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}
