package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

var testMessage = EmailMessage{
	To:       "jane@example.com",
	ToName:   "Jane Doe",
	Subject:  "Hello",
	Text:     "plain",
	HTML:     "<p>rich</p>",
	Category: "booking-confirmation",
}

func TestMailboxHeader(t *testing.T) {
	assert.Equal(t, "=?utf-8?q?Lumi=C3=A8re?= <desk@example.com>", newMailbox("", "desk@example.com").header())
	assert.Equal(t, `"Front Desk" <desk@example.com>`, newMailbox("Front Desk", "desk@example.com").header())
}

func TestNewSendGridSender(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "desk@example.com"}, nil))

	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "desk@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, defaultFromName, sender.from.name)

	sender = NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "desk@example.com", FromName: "Front Desk"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Front Desk", sender.from.name)
}

type fakeSendGrid struct {
	got    *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = m
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	api := &fakeSendGrid{status: 202}
	sender := &SendGridSender{api: api, from: newMailbox("", "desk@example.com"), logger: logging.Discard()}

	require.NoError(t, sender.Send(context.Background(), testMessage))
	require.NotNil(t, api.got)
	assert.Equal(t, "desk@example.com", api.got.From.Address)
	assert.Equal(t, "Hello", api.got.Subject)
	require.Len(t, api.got.Personalizations, 1)
	assert.Equal(t, "jane@example.com", api.got.Personalizations[0].To[0].Address)
	require.Len(t, api.got.Content, 2)
	assert.Equal(t, "text/plain", api.got.Content[0].Type)
	assert.Equal(t, "text/html", api.got.Content[1].Type)
	assert.Equal(t, []string{"booking-confirmation"}, api.got.Categories)
}

func TestSendGridSender_Failures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeSendGrid
		want string
	}{
		{name: "transport", api: &fakeSendGrid{err: errors.New("dial tcp")}, want: "dial tcp"},
		{name: "status", api: &fakeSendGrid{status: 401}, want: "status 401"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &SendGridSender{api: tt.api, from: newMailbox("", "desk@example.com"), logger: logging.Discard()}
			err := sender.Send(context.Background(), testMessage)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := (&SendGridSender{}).Send(context.Background(), testMessage)
	assert.Error(t, err)
}

func TestStubEmailSender_Send(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(logging.Discard()).Send(context.Background(), testMessage))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "desk@example.com"}, nil))
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "desk@example.com", FromName: "Front Desk"}, logging.Discard())

	require.NoError(t, sender.Send(context.Background(), testMessage))
	in := api.input
	require.NotNil(t, in)
	assert.Equal(t, `"Front Desk" <desk@example.com>`, aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"jane@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(in.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>rich</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	require.Len(t, in.EmailTags, 1)
	assert.Equal(t, "booking-confirmation", aws.ToString(in.EmailTags[0].Value))
}

func TestSESSender_TextOnly(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "desk@example.com"}, logging.Discard())

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "jane@example.com", Subject: "Hi", Text: "plain"}))
	assert.Nil(t, api.input.Content.Simple.Body.Html)
	assert.Empty(t, api.input.EmailTags)
}

func TestSESSender_SendError(t *testing.T) {
	api := &fakeSES{err: errors.New("throttled")}
	sender := NewSESSender(api, SESConfig{FromEmail: "desk@example.com"}, logging.Discard())

	err := sender.Send(context.Background(), testMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
