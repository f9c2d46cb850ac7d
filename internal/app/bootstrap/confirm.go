package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/internal/notify"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// BuildConfirmer assembles the confirmation hand-off. Confirmed bookings are
// always logged. With a queue configured, customer emails are left to the
// confirmation worker; otherwise they are sent inline.
func BuildConfirmer(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.Confirmer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	confirmers := notify.MultiConfirmer{notify.NewLogConfirmer(logger)}

	if queueURL := strings.TrimSpace(cfg.ConfirmationQueueURL); queueURL != "" {
		confirmers = append(confirmers, notify.NewSQSConfirmer(sqs.NewFromConfig(awsCfg), queueURL))
		logger.Info("confirmation queue enabled", "queue_url", queueURL)
		return confirmers, nil
	}

	sender, err := BuildEmailSender(cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	if sender != nil {
		confirmers = append(confirmers, notify.NewEmailConfirmer(sender))
	}

	return confirmers, nil
}

// BuildEmailSender returns the configured confirmation email channel, or nil
// when emails are off.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.ConfirmationEmailProvider {
	case "", "none":
		return nil, nil
	case "stub":
		return notify.NewStubEmailSender(logger), nil
	case "ses":
		if strings.TrimSpace(cfg.SESFromEmail) == "" {
			return nil, fmt.Errorf("bootstrap: SES_FROM_EMAIL is required for ses confirmations")
		}
		logger.Info("confirmation emails via ses", "from", cfg.SESFromEmail)
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger), nil
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; confirmation emails disabled")
			return nil, nil
		}
		logger.Info("confirmation emails via sendgrid", "from", cfg.SendGridFromEmail)
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown confirmation email provider %q", cfg.ConfirmationEmailProvider)
	}
}
