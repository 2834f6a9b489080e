// Package metrics puts report run metrics into CloudWatch.
package metrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/metrics")

// Metric names.
const (
	MetricExpiring         = "ExpiringReservations"
	MetricActive           = "ActiveReservations"
	MetricSourceFailures   = "SourceFailures"
	MetricDeliveryFailures = "DeliveryFailures"
	MetricDelivered        = "ReportsDelivered"
)

// CloudWatchAPI defines required CloudWatch operations.
type CloudWatchAPI interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder writes run metrics under one namespace.
type Recorder struct {
	cw        CloudWatchAPI
	namespace string
}

// NewRecorder creates a new CloudWatch recorder.
func NewRecorder(cw CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{
		cw:        cw,
		namespace: namespace,
	}
}

// Record puts per-source reservation counts and the run totals.
func (r *Recorder) Record(ctx context.Context, summary *events.RunSummary) error {
	ctx, span := tracer.Start(ctx, "metrics.record")
	defer span.End()
	span.SetAttributes(attribute.String("cloudwatch.namespace", r.namespace))

	data := make([]types.MetricDatum, 0, 2*len(summary.Sources)+3)
	for _, src := range summary.Sources {
		if src.Error != "" {
			continue
		}
		data = append(data,
			r.datum(summary, MetricExpiring, float64(src.Expiring), src.Source),
			r.datum(summary, MetricActive, float64(src.Active), src.Source),
		)
	}

	failed := len(summary.FailedRecipients())
	data = append(data,
		r.datum(summary, MetricSourceFailures, float64(len(summary.FailedSources())), ""),
		r.datum(summary, MetricDeliveryFailures, float64(failed), ""),
		r.datum(summary, MetricDelivered, float64(len(summary.Deliveries)-failed), ""),
	)

	_, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("cannot put metric data: %w", err)
	}

	return nil
}

func (r *Recorder) datum(summary *events.RunSummary, name string, value float64, source string) types.MetricDatum {
	d := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(summary.GeneratedAt),
	}
	if source != "" {
		d.Dimensions = []types.Dimension{{
			Name:  aws.String("Source"),
			Value: aws.String(source),
		}}
	}
	return d
}
