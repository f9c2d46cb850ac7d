package confirmationworker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/lumiere-booking/cmd/mainconfig"
	appbootstrap "github.com/wolfman30/lumiere-booking/internal/app/bootstrap"
	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// Run starts the confirmation worker and blocks until ctx is canceled.
func Run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	if cfg == nil {
		return fmt.Errorf("confirmation worker requires config")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.ConfirmationQueueURL) == "" {
		return fmt.Errorf("confirmation worker requires CONFIRMATION_QUEUE_URL")
	}

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	sender, err := appbootstrap.BuildEmailSender(cfg, awsConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to configure email sender: %w", err)
	}
	if sender == nil {
		return fmt.Errorf("confirmation worker requires CONFIRMATION_EMAIL_PROVIDER (ses, sendgrid or stub)")
	}

	queue := NewSQSQueue(sqs.NewFromConfig(awsConfig), cfg.ConfirmationQueueURL)
	worker := NewWorker(queue, sender, logger,
		WithWorkerCount(cfg.ConfirmationWorkers),
		WithMaxDeliveries(cfg.ConfirmationMaxDeliveries),
	)

	logger.Info("confirmation worker starting", "queue_url", cfg.ConfirmationQueueURL, "workers", cfg.ConfirmationWorkers)
	worker.Start(ctx)

	<-ctx.Done()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("confirmation worker stopped")
	case <-doneCtx.Done():
		logger.Error("confirmation worker shutdown timed out", "error", doneCtx.Err())
	}

	return nil
}
