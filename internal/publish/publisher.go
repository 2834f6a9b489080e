// Package publish puts report run summaries on an EventBridge bus.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/publish")

const (
	// DetailType is the EventBridge detail-type of run summaries.
	DetailType = "Reservation Expiration Report"
	// Source is the EventBridge source of run summaries.
	Source = "ri.expiration.report"
)

// EventBridgeAPI defines required EventBridge operations.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher publishes run summaries to EventBridge.
type Publisher struct {
	client       EventBridgeAPI
	eventBusName string
}

// NewPublisher creates a new EventBridge publisher.
func NewPublisher(client EventBridgeAPI, eventBusName string) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
	}
}

// Publish sends a run summary to EventBridge.
func (p *Publisher) Publish(ctx context.Context, summary *events.RunSummary) error {
	ctx, span := tracer.Start(ctx, "publish.eventbridge")
	defer span.End()
	span.SetAttributes(
		attribute.String("eventbus.name", p.eventBusName),
		attribute.String("run.id", summary.RunID),
	)

	detail, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cannot marshal summary: %w", err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(detail)),
			DetailType:   aws.String(DetailType),
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			Time:         aws.Time(summary.GeneratedAt),
		}},
	}

	out, err := p.client.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("cannot put event: %w", err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("event rejected: %s - %s",
			aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	return nil
}
