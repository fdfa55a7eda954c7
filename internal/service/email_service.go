package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
)

// ContactEmail письмо владельцу компании от посетителя сайта.
type ContactEmail struct {
	To           string
	ReplyTo      string
	BusinessName string
	SenderName   string
	SenderEmail  string
	Phone        string
	Company      string
	Message      string
}

// Emailer отправляет письма.
type Emailer interface {
	SendContactEmail(ctx context.Context, msg ContactEmail) error
}

var contactTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>Новое сообщение для {{.BusinessName}}</h2>
  <p><strong>От:</strong> {{.SenderName}} &lt;{{.SenderEmail}}&gt;</p>
  {{if .Phone}}<p><strong>Телефон:</strong> {{.Phone}}</p>{{end}}
  {{if .Company}}<p><strong>Компания:</strong> {{.Company}}</p>{{end}}
  <p style="white-space: pre-line;">{{.Message}}</p>
  <hr>
  <p style="color: #888;">Ответьте на это письмо, чтобы связаться с отправителем.</p>
</body>
</html>`))

// ResendEmailer отправляет письма через Resend.
type ResendEmailer struct {
	client *resend.Client
	from   string
}

// NewResendEmailer создаёт отправителя. Без ключа возвращает NoopEmailer.
func NewResendEmailer(apiKey, from string) Emailer {
	if apiKey == "" {
		logger.Log.Warn("RESEND_API_KEY не задан, письма отправляться не будут")
		return NoopEmailer{}
	}
	return &ResendEmailer{client: resend.NewClient(apiKey), from: from}
}

// SendContactEmail отправляет письмо с заявкой на адрес компании.
func (e *ResendEmailer) SendContactEmail(ctx context.Context, msg ContactEmail) error {
	html, err := renderContactEmail(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{msg.To},
		Subject: fmt.Sprintf("Новое сообщение для %s", msg.BusinessName),
		Html:    html,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := e.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("email: send contact email: %w", err)
	}
	return nil
}

// NoopEmailer пишет письмо в лог вместо отправки. Используется в development.
type NoopEmailer struct{}

// SendContactEmail реализует Emailer.
func (NoopEmailer) SendContactEmail(_ context.Context, msg ContactEmail) error {
	logger.Log.WithFields(logrus.Fields{
		"to":       msg.To,
		"reply_to": msg.ReplyTo,
		"business": msg.BusinessName,
	}).Info("email: отправка отключена, письмо пропущено")
	return nil
}

func renderContactEmail(msg ContactEmail) (string, error) {
	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, msg); err != nil {
		return "", fmt.Errorf("email: render contact template: %w", err)
	}
	return body.String(), nil
}
