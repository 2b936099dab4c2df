package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridSender отправляет письма через SendGrid v3 API
type SendGridSender struct {
	apiKey     string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridSender создает отправителя SendGrid
func NewSendGridSender(apiKey, fromName, fromEmail, subjectPrefix string) *SendGridSender {
	return &SendGridSender{
		apiKey:     apiKey,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: subjectPrefix,
	}
}

// Send отправляет письмо
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d: %s", ErrSend, res.StatusCode, res.Body)
	}

	return nil
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	return m
}
