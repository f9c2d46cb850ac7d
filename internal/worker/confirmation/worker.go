// Package confirmationworker drains the booking confirmation queue and emails
// each customer their appointment summary.
package confirmationworker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/lumiere-booking/internal/notify"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 20
	defaultBatchSize    = 5
	defaultMaxDelivery  = 5
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10

	// Retry delays double per delivery from retryBaseDelay up to the SQS
	// visibility ceiling.
	retryBaseDelay = 30 * time.Second
	retryMaxDelay  = 12 * time.Hour

	ackTimeout = 5 * time.Second
)

// disposition is what happens to a message after one handling attempt.
type disposition int

const (
	ack   disposition = iota // delivered; remove from the queue
	drop                     // can never succeed; remove and log
	retry                    // transient failure; redeliver later
)

func (d disposition) String() string {
	switch d {
	case ack:
		return "ack"
	case drop:
		return "drop"
	default:
		return "retry"
	}
}

// Worker polls the confirmation queue with a fixed pool of goroutines.
type Worker struct {
	queue  queueClient
	sender notify.EmailSender
	logger *logging.Logger
	sleep  func(time.Duration)

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers     int
	waitSecs    int
	batchSize   int
	maxDelivery int
}

type WorkerOption func(*workerConfig)

func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait, capped at the SQS maximum.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds >= 0 {
			cfg.waitSecs = min(seconds, maxWaitSeconds)
		}
	}
}

// WithReceiveBatchSize sets messages per receive, capped at the SQS maximum.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size > 0 {
			cfg.batchSize = min(size, maxReceiveBatchSize)
		}
	}
}

// WithMaxDeliveries drops a confirmation whose send has failed this many
// times instead of retrying forever.
func WithMaxDeliveries(n int) WorkerOption {
	return func(cfg *workerConfig) {
		if n > 0 {
			cfg.maxDelivery = n
		}
	}
}

func NewWorker(queue queueClient, sender notify.EmailSender, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("confirmationworker: queue cannot be nil")
	}
	if sender == nil {
		panic("confirmationworker: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:     defaultWorkerCount,
		waitSecs:    defaultWaitSeconds,
		batchSize:   defaultBatchSize,
		maxDelivery: defaultMaxDelivery,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Worker{queue: queue, sender: sender, logger: logger, sleep: time.Sleep, cfg: cfg}
}

// Start launches the polling goroutines. They stop when ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(w.cfg.workers)
	for id := 1; id <= w.cfg.workers; id++ {
		go w.poll(ctx, id)
	}
}

// Wait blocks until every polling goroutine has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) poll(ctx context.Context, id int) {
	defer w.wg.Done()
	logger := w.logger.With("worker_id", id)
	pause := time.Second

	for ctx.Err() == nil {
		msgs, err := w.queue.Receive(ctx, w.cfg.batchSize, w.cfg.waitSecs)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("confirmation receive failed", "error", err, "retry_in", pause.String())
			w.sleep(pause)
			pause = min(pause*2, 8*time.Second)
			continue
		}
		pause = time.Second
		for _, msg := range msgs {
			w.settle(ctx, msg, w.process(ctx, msg))
		}
	}
}

// process makes one delivery attempt for msg.
func (w *Worker) process(ctx context.Context, msg queueMessage) disposition {
	var conf notify.Confirmation
	if err := json.Unmarshal([]byte(msg.Body), &conf); err != nil {
		w.logger.Error("unreadable confirmation", "message_id", msg.ID, "error", err)
		return drop
	}
	if strings.TrimSpace(conf.Customer.Email) == "" {
		w.logger.Warn("confirmation has no customer email", "message_id", msg.ID, "service_id", conf.ServiceID)
		return drop
	}
	if err := notify.SendConfirmationEmail(ctx, w.sender, conf); err != nil {
		if msg.Deliveries >= w.cfg.maxDelivery {
			w.logger.Error("giving up on confirmation email", "message_id", msg.ID, "deliveries", msg.Deliveries, "error", err)
			return drop
		}
		w.logger.Warn("confirmation email failed", "message_id", msg.ID, "deliveries", msg.Deliveries, "error", err)
		return retry
	}
	w.logger.Info("customer notified",
		"message_id", msg.ID,
		"service_id", conf.ServiceID,
		"date", conf.Date.String(),
		"time", conf.Time,
	)
	return ack
}

// settle applies d to msg on the queue. It runs on a detached context so a
// shutdown mid-batch still acknowledges finished work.
func (w *Worker) settle(ctx context.Context, msg queueMessage, d disposition) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()

	var err error
	switch d {
	case ack, drop:
		err = w.queue.Delete(ctx, msg.ReceiptHandle)
	case retry:
		err = w.queue.Postpone(ctx, msg.ReceiptHandle, int(retryDelay(msg.Deliveries).Seconds()))
	}
	if err != nil {
		w.logger.Error("confirmation settle failed", "message_id", msg.ID, "disposition", d.String(), "error", err)
	}
}

// retryDelay is the hold before redelivery after the given delivery failed.
func retryDelay(deliveries int) time.Duration {
	d := retryBaseDelay
	for i := 1; i < deliveries && d < retryMaxDelay; i++ {
		d *= 2
	}
	return min(d, retryMaxDelay)
}
