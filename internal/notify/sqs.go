package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/wolfman30/lumiere-booking/internal/booking"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSConfirmer publishes confirmations as JSON messages on an SQS queue for a
// downstream booking system to pick up.
type SQSConfirmer struct {
	client   sqsAPI
	queueURL string
	now      func() time.Time
}

func NewSQSConfirmer(client sqsAPI, queueURL string) *SQSConfirmer {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: SQS queueURL cannot be empty")
	}
	return &SQSConfirmer{client: client, queueURL: queueURL, now: time.Now}
}

func (c *SQSConfirmer) Confirmed(ctx context.Context, s booking.State) error {
	body, err := json.Marshal(NewConfirmation(s, c.now()))
	if err != nil {
		return fmt.Errorf("notify: marshal confirmation: %w", err)
	}
	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to send SQS message: %w", err)
	}
	return nil
}

var _ Confirmer = (*SQSConfirmer)(nil)
