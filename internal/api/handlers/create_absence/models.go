package create_absence

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	createAbsence "github.com/m04kA/kesseki-furikae/internal/usecase/create_absence"
)

// CreateAbsenceRequest HTTP request model
type CreateAbsenceRequest struct {
	ChildName    string  `json:"childName" validate:"required,notblank,max=100"`
	ClassBand    string  `json:"classBand" validate:"required,oneof=beginner intermediate advanced"`
	AbsentDate   string  `json:"absentDate" validate:"required,datetime=2006-01-02"` // "2026-04-15"
	SlotID       string  `json:"slotId" validate:"required"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
}

// AbsenceResponse HTTP response model
type AbsenceResponse struct {
	AbsenceID      string `json:"absenceId"`
	ResumeToken    string `json:"resumeToken"`
	ConfirmCode    string `json:"confirmCode"`
	MakeupDeadline string `json:"makeupDeadline"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAbsenceRequest) ToUseCaseRequest() (*createAbsence.Request, error) {
	absentDate, err := domain.ParseDate(r.AbsentDate)
	if err != nil {
		return nil, err
	}

	return &createAbsence.Request{
		ChildName:      r.ChildName,
		ClassBand:      domain.ClassBand(r.ClassBand),
		AbsentDate:     absentDate,
		OriginalSlotID: r.SlotID,
		ContactEmail:   r.ContactEmail,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAbsence.Response) *AbsenceResponse {
	return &AbsenceResponse{
		AbsenceID:      resp.AbsenceID,
		ResumeToken:    resp.ResumeToken,
		ConfirmCode:    resp.ConfirmCode,
		MakeupDeadline: resp.MakeupDeadline.Format(domain.DateFormat),
		Status:         resp.Status,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
	}
}
