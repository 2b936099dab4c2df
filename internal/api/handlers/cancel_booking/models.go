package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_booking"
)

// CancelByCodeRequest HTTP request model для отмены по коду подтверждения
type CancelByCodeRequest struct {
	ConfirmCode string `json:"confirmCode" validate:"required,len=6,numeric"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	RequestID     string  `json:"requestId"`
	Status        string  `json:"status"`
	CancelReason  string  `json:"cancelReason"`
	CancelledAt   string  `json:"cancelledAt"`
	AbsenceID     *string `json:"absenceId,omitempty"`
	AbsenceStatus string  `json:"absenceStatus,omitempty"`
	ResumeToken   string  `json:"resumeToken,omitempty"`
	SlotID        string  `json:"slotId"`
	Remaining     int     `json:"remaining"`
	Availability  string  `json:"availability"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		RequestID:     resp.RequestID,
		Status:        resp.Status,
		CancelReason:  resp.CancelReason,
		CancelledAt:   resp.CancelledAt.Format(time.RFC3339),
		AbsenceID:     resp.AbsenceID,
		AbsenceStatus: resp.AbsenceStatus,
		ResumeToken:   resp.ResumeToken,
		SlotID:        resp.SlotID,
		Remaining:     resp.Remaining,
		Availability:  string(resp.Level),
	}
}
