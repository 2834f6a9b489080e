package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/notify")

// SNSAPI defines required SNS operations.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		input *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends alerts to an SNS topic.
type SNS struct {
	client   SNSAPI
	topicARN string
}

// NewSNS creates a new SNS alerter.
func NewSNS(client SNSAPI, topicARN string) *SNS {
	return &SNS{
		client:   client,
		topicARN: topicARN,
	}
}

// Alert publishes a degraded run summary to SNS.
func (s *SNS) Alert(ctx context.Context, summary *events.RunSummary) error {
	ctx, span := tracer.Start(ctx, "notify.sns")
	defer span.End()
	span.SetAttributes(
		attribute.String("sns.topic_arn", s.topicARN),
		attribute.String("run.id", summary.RunID),
	)

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String("RI Expiration Report - run degraded"),
		Message:  aws.String(FormatText(summary)),
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("cannot publish to SNS: %w", err)
	}

	return nil
}
