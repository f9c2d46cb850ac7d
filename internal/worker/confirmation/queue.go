package confirmationworker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type queueClient interface {
	Receive(ctx context.Context, maxMessages, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
	// Postpone hides a message for delay seconds before it is redelivered.
	Postpone(ctx context.Context, receiptHandle string, delaySeconds int) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
	// Deliveries counts how many times the queue has handed this message out,
	// this delivery included. Zero when the queue does not report it.
	Deliveries int
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// SQSQueue is the confirmation queue backed by SQS (or LocalStack).
type SQSQueue struct {
	api sqsAPI
	url string
}

func NewSQSQueue(client sqsAPI, queueURL string) *SQSQueue {
	if client == nil {
		panic("confirmationworker: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("confirmationworker: SQS queue URL cannot be empty")
	}
	return &SQSQueue{api: client, url: queueURL}
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages, waitSeconds int) ([]queueMessage, error) {
	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(q.url),
		MaxNumberOfMessages:         int32(maxMessages),
		WaitTimeSeconds:             int32(waitSeconds),
		MessageSystemAttributeNames: []sqstypes.MessageSystemAttributeName{sqstypes.MessageSystemAttributeNameApproximateReceiveCount},
	})
	if err != nil {
		return nil, fmt.Errorf("confirmationworker: receive: %w", err)
	}
	msgs := make([]queueMessage, len(out.Messages))
	for i, m := range out.Messages {
		msgs[i] = queueMessage{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		}
		if n, err := strconv.Atoi(m.Attributes[string(sqstypes.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
			msgs[i].Deliveries = n
		}
	}
	return msgs, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	if _, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	}); err != nil {
		return fmt.Errorf("confirmationworker: delete: %w", err)
	}
	return nil
}

func (q *SQSQueue) Postpone(ctx context.Context, receiptHandle string, delaySeconds int) error {
	if receiptHandle == "" {
		return nil
	}
	if _, err := q.api.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(q.url),
		ReceiptHandle:     aws.String(receiptHandle),
		VisibilityTimeout: int32(delaySeconds),
	}); err != nil {
		return fmt.Errorf("confirmationworker: change visibility: %w", err)
	}
	return nil
}
