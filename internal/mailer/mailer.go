// Package mailer relays contact-form submissions to the operator mailbox.
package mailer

import (
	"context"
	"fmt"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/validation"

	gomail "github.com/wneessen/go-mail"
)

// ContactMessage is one contact-form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Mailer sends contact messages over SMTP to a fixed recipient. One
// connection per message; no retry.
type Mailer struct {
	host      string
	port      int
	username  string
	password  string
	recipient string
}

// NewMailer creates a Mailer.
func NewMailer(host string, port int, username, password, recipient string) *Mailer {
	return &Mailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		recipient: recipient,
	}
}

// SendContactMessage validates the submission and relays it verbatim to the
// operator mailbox. Any transport or auth failure yields DeliveryError.
func (m *Mailer) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := validation.ValidateContactMessage(msg.Name, msg.Email, msg.Phone, msg.Message); err != nil {
		return models.NewValidationError(err.Error())
	}

	mail := gomail.NewMsg()
	if err := mail.From(m.username); err != nil {
		return models.NewDeliveryError(err)
	}
	if err := mail.To(m.recipient); err != nil {
		return models.NewDeliveryError(err)
	}
	mail.Subject("Blog Message")
	mail.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nMessage: %s\n",
		msg.Name, msg.Email, msg.Phone, msg.Message,
	))

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.username),
		gomail.WithPassword(m.password),
	)
	if err != nil {
		observability.MailDeliveries.WithLabelValues("error").Inc()
		return models.NewDeliveryError(err)
	}

	if err := client.DialAndSendWithContext(ctx, mail); err != nil {
		observability.MailDeliveries.WithLabelValues("error").Inc()
		return models.NewDeliveryError(err)
	}

	observability.MailDeliveries.WithLabelValues("ok").Inc()
	return nil
}
