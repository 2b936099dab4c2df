package create_absence

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// Request модель запроса на регистрацию пропуска
type Request struct {
	ChildName      string           // Имя ребенка
	ClassBand      domain.ClassBand // Заявленный уровень
	AbsentDate     time.Time        // Дата пропуска (без времени)
	OriginalSlotID string           // Слот, который ребенок пропустит
	ContactEmail   *string          // Email для уведомлений (опционально)
}

// Response модель ответа с зарегистрированным пропуском
type Response struct {
	AbsenceID      string
	ResumeToken    string
	ConfirmCode    string
	MakeupDeadline time.Time
	Status         string
	CreatedAt      time.Time
}
