package mailer

import "errors"

var (
	// ErrUnknownKind возвращается для вида уведомления без шаблона
	ErrUnknownKind = errors.New("mailer: unknown notification kind")

	// ErrRender возвращается при ошибке рендеринга шаблона
	ErrRender = errors.New("mailer: failed to render template")

	// ErrSend возвращается при ошибке отправки письма
	ErrSend = errors.New("mailer: failed to send message")
)
