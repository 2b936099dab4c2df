package mailer

import "time"

// Kind вид уведомления
type Kind string

const (
	KindAbsenceConfirmed Kind = "absence_confirmed"
	KindAbsenceCancelled Kind = "absence_cancelled"
	KindMakeupConfirmed  Kind = "makeup_confirmed"
	KindMakeupCancelled  Kind = "makeup_cancelled"
	KindMakeupDeclined   Kind = "makeup_declined"
)

// Payload данные для шаблона письма
// Заполняются только нужные виду уведомления поля
type Payload struct {
	ChildName   string
	ClassBand   string
	AbsentDate  time.Time
	ConfirmCode string

	ResumeToken    string
	MakeupDeadline time.Time

	SlotStartsAt time.Time
	CourseLabel  string
	CancelToken  string
	DeclineToken string

	Reason string
}

// Message готовое к отправке письмо
type Message struct {
	To      string
	Subject string
	Body    string
}

// templateData то, что видит шаблон: payload + ссылки
type templateData struct {
	Payload
	ResumeURL  string
	CancelURL  string
	DeclineURL string
}
