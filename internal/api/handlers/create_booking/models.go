package create_booking

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	createBooking "github.com/m04kA/kesseki-furikae/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
// Доступ по resumeToken или по паре absenceId + confirmCode
type CreateBookingRequest struct {
	ResumeToken string `json:"resumeToken,omitempty" validate:"required_without=AbsenceID"`
	AbsenceID   string `json:"absenceId,omitempty" validate:"required_without=ResumeToken"`
	ConfirmCode string `json:"confirmCode,omitempty" validate:"omitempty,len=6,numeric"`
	SlotID      string `json:"slotId" validate:"required"`
}

// AdminCreateBookingRequest HTTP request model для записи администратором
// Без absenceId данные ребенка передаются явно
type AdminCreateBookingRequest struct {
	AbsenceID    string  `json:"absenceId,omitempty"`
	ChildName    string  `json:"childName,omitempty" validate:"required_without=AbsenceID,max=100"`
	ClassBand    string  `json:"classBand,omitempty" validate:"required_without=AbsenceID"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	SlotID       string  `json:"slotId" validate:"required"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	RequestID    string  `json:"requestId"`
	AbsenceID    *string `json:"absenceId,omitempty"`
	ChildName    string  `json:"childName"`
	SlotID       string  `json:"slotId"`
	SlotStartsAt string  `json:"slotStartsAt"`
	CourseLabel  string  `json:"courseLabel"`
	Status       string  `json:"status"`
	CancelToken  string  `json:"cancelToken"`
	DeclineToken string  `json:"declineToken"`
	ConfirmCode  *string `json:"confirmCode,omitempty"`
	Remaining    int     `json:"remaining"`
	Availability string  `json:"availability"`
	Label        string  `json:"label"`
	CreatedAt    string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	return &createBooking.Request{
		ResumeToken: r.ResumeToken,
		AbsenceID:   r.AbsenceID,
		ConfirmCode: r.ConfirmCode,
		SlotID:      r.SlotID,
	}
}

// ToUseCaseRequest конвертирует HTTP запрос администратора в модель use case
func (r *AdminCreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	req := &createBooking.Request{
		AbsenceID: r.AbsenceID,
		ByAdmin:   true,
		SlotID:    r.SlotID,
	}
	if r.AbsenceID == "" {
		req.ChildName = r.ChildName
		req.ClassBand = domain.ClassBand(r.ClassBand)
		req.ContactEmail = r.ContactEmail
	}
	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		RequestID:    resp.RequestID,
		AbsenceID:    resp.AbsenceID,
		ChildName:    resp.ChildName,
		SlotID:       resp.SlotID,
		SlotStartsAt: resp.SlotStartsAt.Format(time.RFC3339),
		CourseLabel:  resp.CourseLabel,
		Status:       resp.Status,
		CancelToken:  resp.CancelToken,
		DeclineToken: resp.DeclineToken,
		ConfirmCode:  resp.ConfirmCode,
		Remaining:    resp.Remaining,
		Availability: string(resp.Level),
		Label:        resp.Label,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
	}
}
