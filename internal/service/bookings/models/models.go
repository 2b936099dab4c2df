package models

import (
	"errors"
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest фильтр списка заявок для сверки
type ListBookingsRequest struct {
	SlotID    *string    `json:"slotId,omitempty"`
	AbsenceID *string    `json:"absenceId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"` // начало урока, включительно
	EndDate   *time.Time `json:"endDate,omitempty"`   // начало урока, строго до
	Status    *string    `json:"status,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.RequestFilter, error) {
	filter := domain.RequestFilter{
		SlotID:    r.SlotID,
		AbsenceID: r.AbsenceID,
		StartFrom: r.StartDate,
		StartTo:   r.EndDate,
	}

	if r.Status != nil {
		status, err := ToDomainRequestStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse заявка на отработку
// Ссылочные токены не отдаются даже администратору
type BookingResponse struct {
	ID           string  `json:"id"`
	AbsenceID    *string `json:"absenceId,omitempty"`
	ChildName    string  `json:"childName"`
	ClassBand    string  `json:"classBand"`
	AbsentDate   *string `json:"absentDate,omitempty"` // "2026-04-15"
	SlotID       string  `json:"slotId"`
	Status       string  `json:"status"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	ConfirmCode  *string `json:"confirmCode,omitempty"`

	// Денормализованное время начала слота
	SlotStartsAt time.Time `json:"slotStartsAt"`

	CancelReason *string `json:"cancelReason,omitempty"`
	CancelledAt  *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком заявок
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(r *domain.MakeupRequest) *BookingResponse {
	if r == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           r.ID,
		AbsenceID:    r.AbsenceID,
		ChildName:    r.ChildName,
		ClassBand:    string(r.ClassBand),
		SlotID:       r.SlotID,
		SlotStartsAt: r.SlotStartsAt,
		Status:       string(r.Status),
		ContactEmail: r.ContactEmail,
		ConfirmCode:  r.ConfirmCode,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	if r.AbsentDate != nil {
		date := r.AbsentDate.Format(domain.DateFormat)
		resp.AbsentDate = &date
	}

	if r.CancelReason != nil {
		reason := string(*r.CancelReason)
		resp.CancelReason = &reason
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(requests []*domain.MakeupRequest) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(requests)),
		Total:    len(requests),
	}

	for _, r := range requests {
		if bookingResp := FromDomainBooking(r); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainRequestStatus конвертирует строку в domain.RequestStatus с валидацией
func ToDomainRequestStatus(status string) (domain.RequestStatus, error) {
	s := domain.RequestStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
