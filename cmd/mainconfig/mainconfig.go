// Package mainconfig holds start-up wiring shared by the binaries under cmd/.
package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
)

// awsAppID is sent in the SDK user agent so SES, SQS and Bedrock calls can be
// attributed in CloudTrail.
const awsAppID = "lumiere-booking"

// LoadAWSConfig builds the SDK config for SQS, SES and Bedrock clients.
// Static keys win over the default chain when both are set, and
// AWS_ENDPOINT_OVERRIDE points every client at one endpoint (LocalStack in
// development).
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	if cfg == nil {
		return aws.Config{}, fmt.Errorf("mainconfig: config is required")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
		config.WithAppID(awsAppID),
	}
	if key, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretAccessKey); key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("mainconfig: load aws config: %w", err)
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}
