package notify

import (
	"context"
	"net/mail"

	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

const defaultFromName = "Lumière"

// EmailSender delivers one message. SES, SendGrid and the stub all satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outbound email. Text is required; HTML is sent as
// an alternative part when present.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	// Category tags the message in the provider dashboard.
	Category string
}

// mailbox is a display name plus address.
type mailbox struct {
	name  string
	email string
}

func newMailbox(name, email string) mailbox {
	if name == "" {
		name = defaultFromName
	}
	return mailbox{name: name, email: email}
}

// header renders the mailbox for a From/To header. Non-ASCII names such as
// the default are RFC 2047 encoded.
func (m mailbox) header() string {
	return (&mail.Address{Name: m.name, Address: m.email}).String()
}

// StubEmailSender logs instead of sending; used when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email suppressed", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}

var _ EmailSender = (*StubEmailSender)(nil)
