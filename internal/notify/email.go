package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailClient sends a prepared SendGrid message.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Email sends ops notices to the admin address and confirmations to renters.
type Email struct {
	client       MailClient
	fromEmail    string
	fromName     string
	adminAddress string
}

// NewSendGridEmail builds an Email channel backed by the SendGrid API.
func NewSendGridEmail(apiKey, fromEmail, fromName, adminAddress string) *Email {
	return NewEmail(sendgrid.NewSendClient(apiKey), fromEmail, fromName, adminAddress)
}

func NewEmail(client MailClient, fromEmail, fromName, adminAddress string) *Email {
	return &Email{client: client, fromEmail: fromEmail, fromName: fromName, adminAddress: adminAddress}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Accepts(a Audience) bool {
	return a == AudienceRenter || (a == AudienceOps && e.adminAddress != "")
}

func (e *Email) Send(ctx context.Context, msg Message) error {
	to, toName := msg.To, msg.ToName
	if msg.Audience == AudienceOps {
		to, toName = e.adminAddress, "Operations"
	}
	if to == "" {
		return &SendError{Channel: e.Name(), Code: 400, Message: "no recipient"}
	}

	from := mail.NewEmail(e.fromName, e.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, msg.Subject, recipient, msg.Text, msg.HTML)

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return &SendError{Channel: e.Name(), Code: response.StatusCode, Message: response.Body}
	}
	return nil
}
