package cancel_absence

import "time"

// Request модель запроса на отмену пропуска
// Заполняется ровно один способ доступа: ResumeToken, AbsenceID+ConfirmCode или AbsenceID+ByAdmin
type Request struct {
	ResumeToken string
	AbsenceID   string
	ConfirmCode string
	ByAdmin     bool
}

// Response модель ответа после отмены
type Response struct {
	AbsenceID         string
	Status            string
	CancelReason      string
	CancelledAt       time.Time
	CancelledRequests []string // заявки, отмененные каскадом
}
