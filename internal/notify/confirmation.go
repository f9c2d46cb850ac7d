package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

const confirmationCategory = "booking-confirmation"

// AnyStaffLabel is shown when no specific professional was picked.
const AnyStaffLabel = "Any Available Professional"

// Confirmation is the finished booking handed to outside systems.
type Confirmation struct {
	ServiceID   string                  `json:"service_id"`
	ServiceName string                  `json:"service_name"`
	DurationMin int                     `json:"duration_min"`
	Price       decimal.Decimal         `json:"price"`
	StaffID     string                  `json:"staff_id,omitempty"`
	StaffName   string                  `json:"staff_name"`
	Date        calendar.Date           `json:"date"`
	Time        string                  `json:"time"`
	Customer    booking.CustomerDetails `json:"customer"`
	ConfirmedAt time.Time               `json:"confirmed_at"`
}

// NewConfirmation flattens a booking aggregate for hand-off.
func NewConfirmation(s booking.State, at time.Time) Confirmation {
	c := Confirmation{
		StaffName:   AnyStaffLabel,
		Customer:    s.Customer,
		ConfirmedAt: at.UTC(),
	}
	if s.Service != nil {
		c.ServiceID = s.Service.ID
		c.ServiceName = s.Service.Name
		c.DurationMin = s.Service.DurationMin
		c.Price = s.Service.Price
	}
	if id, ok := s.Staff.StaffID(); ok {
		c.StaffID = id
		if member, found := catalog.StaffByID(id); found {
			c.StaffName = member.Name
		}
	}
	if s.Date != nil {
		c.Date = *s.Date
	}
	if s.TimeSlot != nil {
		c.Time = s.TimeSlot.Label
	}
	return c
}

// Confirmer receives a booking once the customer confirms it. The wizard
// does not depend on the result.
type Confirmer interface {
	Confirmed(ctx context.Context, s booking.State) error
}

// LogConfirmer records confirmations in the structured log.
type LogConfirmer struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewLogConfirmer(logger *logging.Logger) *LogConfirmer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogConfirmer{logger: logger, now: time.Now}
}

func (c *LogConfirmer) Confirmed(_ context.Context, s booking.State) error {
	conf := NewConfirmation(s, c.now())
	c.logger.Info("booking confirmed",
		"service_id", conf.ServiceID,
		"staff", conf.StaffName,
		"date", conf.Date.String(),
		"time", conf.Time,
	)
	return nil
}

// EmailConfirmer sends the customer a confirmation email.
type EmailConfirmer struct {
	sender EmailSender
	now    func() time.Time
}

func NewEmailConfirmer(sender EmailSender) *EmailConfirmer {
	if sender == nil {
		panic("notify: email sender required")
	}
	return &EmailConfirmer{sender: sender, now: time.Now}
}

func (c *EmailConfirmer) Confirmed(ctx context.Context, s booking.State) error {
	return SendConfirmationEmail(ctx, c.sender, NewConfirmation(s, c.now()))
}

// SendConfirmationEmail mails conf to the customer who made the booking.
func SendConfirmationEmail(ctx context.Context, sender EmailSender, conf Confirmation) error {
	if strings.TrimSpace(conf.Customer.Email) == "" {
		return errors.New("notify: booking has no customer email")
	}
	html, err := FormatConfirmationHTML(conf)
	if err != nil {
		return err
	}
	return sender.Send(ctx, EmailMessage{
		To:       conf.Customer.Email,
		ToName:   conf.Customer.Name,
		Subject:  "Your appointment: " + conf.ServiceName,
		Text:     FormatConfirmationEmail(conf),
		HTML:     html,
		Category: confirmationCategory,
	})
}

// FormatConfirmationEmail renders the plain-text confirmation body.
func FormatConfirmationEmail(conf Confirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", conf.Customer.Name)
	fmt.Fprintf(&b, "Your booking is confirmed.\n\n")
	fmt.Fprintf(&b, "Service: %s (%d mins, $%s)\n", conf.ServiceName, conf.DurationMin, conf.Price.StringFixed(2))
	if !conf.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", conf.Date.Long())
	}
	fmt.Fprintf(&b, "Time: %s\n", conf.Time)
	fmt.Fprintf(&b, "Professional: %s\n", conf.StaffName)
	if conf.Customer.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", conf.Customer.Notes)
	}
	b.WriteString("\nCancellations must be made 24 hours in advance.\n")
	return b.String()
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<p>Hi {{.Customer.Name}},</p>
<p>Your booking is confirmed.</p>
<table>
<tr><td>Service</td><td>{{.ServiceName}} ({{.DurationMin}} mins, ${{.Price.StringFixed 2}})</td></tr>
{{- if not .Date.IsZero}}
<tr><td>Date</td><td>{{.Date.Long}}</td></tr>
{{- end}}
<tr><td>Time</td><td>{{.Time}}</td></tr>
<tr><td>Professional</td><td>{{.StaffName}}</td></tr>
{{- with .Customer.Notes}}
<tr><td>Notes</td><td>{{.}}</td></tr>
{{- end}}
</table>
<p>Cancellations must be made 24 hours in advance.</p>
`))

// FormatConfirmationHTML renders the HTML alternative. Customer-supplied
// fields are escaped.
func FormatConfirmationHTML(conf Confirmation) (string, error) {
	var b strings.Builder
	if err := confirmationHTML.Execute(&b, conf); err != nil {
		return "", fmt.Errorf("notify: render confirmation html: %w", err)
	}
	return b.String(), nil
}

// MultiConfirmer hands a booking to every sink, in order, and joins failures.
type MultiConfirmer []Confirmer

func (m MultiConfirmer) Confirmed(ctx context.Context, s booking.State) error {
	var errs []error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Confirmed(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Confirmer = (*LogConfirmer)(nil)
	_ Confirmer = (*EmailConfirmer)(nil)
	_ Confirmer = MultiConfirmer(nil)
)
