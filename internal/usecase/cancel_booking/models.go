package cancel_booking

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// Request модель запроса на отмену заявки
// Заполняется ровно один способ доступа:
// CancelToken, DeclineToken, RequestID+ConfirmCode или RequestID+ByAdmin
type Request struct {
	CancelToken  string
	DeclineToken string
	RequestID    string
	ConfirmCode  string
	ByAdmin      bool
}

// Response модель ответа после отмены
type Response struct {
	RequestID     string
	Status        string
	CancelReason  string
	CancelledAt   time.Time
	AbsenceID     *string
	AbsenceStatus string // статус пропуска после отмены, пусто для заявки без пропуска
	ResumeToken   string // ссылка для повторного выбора слота

	// Доступность слота после отмены
	SlotID    string
	Remaining int
	Level     domain.AvailabilityLevel
}
