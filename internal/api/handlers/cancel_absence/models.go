package cancel_absence

import (
	"time"

	cancelAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/cancel_absence"
)

// CancelByCodeRequest тело запроса отмены по коду подтверждения
type CancelByCodeRequest struct {
	ConfirmCode string `json:"confirmCode" validate:"required,len=6,numeric"`
}

// CancelAbsenceResponse HTTP response model
type CancelAbsenceResponse struct {
	AbsenceID         string   `json:"absenceId"`
	Status            string   `json:"status"`
	CancelReason      string   `json:"cancelReason"`
	CancelledAt       string   `json:"cancelledAt"`
	CancelledBookings []string `json:"cancelledBookings"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelAbsence.Response) *CancelAbsenceResponse {
	cancelled := resp.CancelledRequests
	if cancelled == nil {
		cancelled = []string{}
	}
	return &CancelAbsenceResponse{
		AbsenceID:         resp.AbsenceID,
		Status:            resp.Status,
		CancelReason:      resp.CancelReason,
		CancelledAt:       resp.CancelledAt.Format(time.RFC3339),
		CancelledBookings: cancelled,
	}
}
