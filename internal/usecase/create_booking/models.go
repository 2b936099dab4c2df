package create_booking

import (
	"time"

	"github.com/m04kA/kesseki-furikae/internal/domain"
)

// Request модель запроса на запись на отработку
//
// Способы доступа:
//   - ResumeToken: гость по ссылке из письма
//   - AbsenceID + ConfirmCode: гость по коду
//   - AbsenceID + ByAdmin: администратор от имени пропуска (без проверки срока и окна)
//   - ByAdmin без AbsenceID: администратор без пропуска, данные ребенка передаются явно
type Request struct {
	ResumeToken string
	AbsenceID   string
	ConfirmCode string
	ByAdmin     bool
	SlotID      string // Слот для отработки

	// Только для записи администратором без пропуска
	ChildName    string
	ClassBand    domain.ClassBand
	ContactEmail *string
}

// Response модель ответа с созданной заявкой
type Response struct {
	RequestID    string
	AbsenceID    *string
	ChildName    string
	SlotID       string
	SlotStartsAt time.Time
	CourseLabel  string
	Status       string
	CancelToken  string
	DeclineToken string
	ConfirmCode  *string

	// Доступность слота после записи
	Remaining int
	Level     domain.AvailabilityLevel
	Label     string

	CreatedAt time.Time
}
