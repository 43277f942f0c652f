package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/domain"
)

// SNSClient publishes alert notifications to a topic.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
}

func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

func (c *SNSClient) Publish(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("notification published")
	return nil
}

// PublishAlert formats and sends a single weather alert.
func (c *SNSClient) PublishAlert(ctx context.Context, a *domain.Alert) error {
	subject := fmt.Sprintf("BuoyWatch %s: %s", a.Severity, a.Title)
	message := fmt.Sprintf(
		"%s\n\n"+
			"Station: %s\n"+
			"Severity: %s\n"+
			"Detected: %s\n",
		a.Description,
		a.BuoyID,
		a.Severity,
		a.DetectedAt.Format(time.RFC3339),
	)
	if a.MeasuredValue != nil && a.ThresholdValue != nil {
		unit := ""
		if a.MeasurementUnit != nil {
			unit = *a.MeasurementUnit
		}
		message += fmt.Sprintf("Measured: %.2f %s (threshold %.2f %s)\n",
			*a.MeasuredValue, unit, *a.ThresholdValue, unit)
	}

	return c.Publish(ctx, subject, message)
}

// PublishBatch aggregates several alerts into one notification.
func (c *SNSClient) PublishBatch(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("BuoyWatch: %d Alerts", len(alerts))
	message := "Multiple alert conditions detected:\n\n"
	for i, a := range alerts {
		message += fmt.Sprintf("%d. [%s] %s - %s\n", i+1, a.Severity, a.BuoyID, a.Title)
	}

	return c.Publish(ctx, subject, message)
}
