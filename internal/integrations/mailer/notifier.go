package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// DefaultSendTimeout ограничение на отправку одного письма
const DefaultSendTimeout = 15 * time.Second

// Пути ссылок в письмах относительно PublicBaseURL
const (
	resumePath  = "/absences/resume/"
	cancelPath  = "/bookings/cancel/"
	declinePath = "/bookings/decline/"
)

// Notifier отправляет уведомления в фоне
// Ошибки только логируются: состояние уже зафиксировано и не откатывается
type Notifier struct {
	sender      Sender
	templates   map[Kind]*template.Template
	baseURL     string
	location    *time.Location
	sendTimeout time.Duration
	logger      Logger
	wg          sync.WaitGroup
}

// NewNotifier создает notifier и разбирает встроенные шаблоны
func NewNotifier(sender Sender, baseURL string, location *time.Location, logger Logger) (*Notifier, error) {
	if location == nil {
		location = time.UTC
	}

	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("2006年1月2日")
		},
		"datetime": func(t time.Time) string {
			return t.In(location).Format("2006年1月2日 15:04")
		},
	}

	kinds := []Kind{KindAbsenceConfirmed, KindAbsenceCancelled, KindMakeupConfirmed, KindMakeupCancelled, KindMakeupDeclined}
	templates := make(map[Kind]*template.Template, len(kinds))
	for _, kind := range kinds {
		tmpl, err := template.New(string(kind)).
			Funcs(funcs).
			Option("missingkey=error").
			ParseFS(templatesFS, "templates/"+string(kind)+".txt")
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrRender, kind, err)
		}
		templates[kind] = tmpl
	}

	return &Notifier{
		sender:      sender,
		templates:   templates,
		baseURL:     strings.TrimRight(baseURL, "/"),
		location:    location,
		sendTimeout: DefaultSendTimeout,
		logger:      logger,
	}, nil
}

// Notify рендерит и отправляет письмо в отдельной горутине
// Пустой адрес - тихо пропускаем: контактный email необязателен
func (n *Notifier) Notify(ctx context.Context, kind Kind, to string, payload Payload) {
	if to == "" {
		return
	}

	msg, err := n.Render(kind, to, payload)
	if err != nil {
		n.logger.Error("Notify: kind=%s: %v", kind, err)
		return
	}

	sendCtx := context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(sendCtx, n.sendTimeout)
		defer cancel()

		if err := n.sender.Send(sendCtx, msg); err != nil {
			n.logger.Error("Notify: failed to send kind=%s to=%s: %v", kind, maskEmail(to), err)
			return
		}
		n.logger.Info("Notify: sent kind=%s to=%s", kind, maskEmail(to))
	}()
}

// Render собирает письмо без отправки
func (n *Notifier) Render(kind Kind, to string, payload Payload) (Message, error) {
	tmpl, ok := n.templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data := templateData{Payload: payload}
	if payload.ResumeToken != "" {
		data.ResumeURL = n.baseURL + resumePath + payload.ResumeToken
	}
	if payload.CancelToken != "" {
		data.CancelURL = n.baseURL + cancelPath + payload.CancelToken
	}
	if payload.DeclineToken != "" {
		data.DeclineURL = n.baseURL + declinePath + payload.DeclineToken
	}

	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("%w: %s subject: %w", ErrRender, kind, err)
	}
	if err := tmpl.ExecuteTemplate(&body, "body", data); err != nil {
		return Message{}, fmt.Errorf("%w: %s body: %w", ErrRender, kind, err)
	}

	return Message{
		To:      to,
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}

// Wait дожидается отправки всех писем (graceful shutdown)
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// maskEmail скрывает локальную часть адреса в логах
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
