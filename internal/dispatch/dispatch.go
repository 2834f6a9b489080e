// Package dispatch delivers the report to every recipient in parallel.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/dispatch")

// Sender delivers one message.
type Sender interface {
	// Send returns the transport message ID.
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// Result is the delivery result for one recipient.
type Result struct {
	Recipient string
	MessageID string
	Err       error
}

// Outcome collects the results of a dispatch in recipient order.
type Outcome struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (o Outcome) Failed() []Result {
	var failed []Result
	for _, r := range o.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Delivered is the number of successful sends.
func (o Outcome) Delivered() int {
	return len(o.Results) - len(o.Failed())
}

// Err joins the delivery errors, or returns nil when every send succeeded.
func (o Outcome) Err() error {
	var errs []error
	for _, r := range o.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Recipient, r.Err))
	}
	return errors.Join(errs...)
}

// Dispatcher sends one message per recipient with bounded parallelism.
type Dispatcher struct {
	sender Sender
	limit  int
	logger *slog.Logger
}

// New creates a dispatcher running at most limit sends at a time. A limit
// below one means no limit.
func New(sender Sender, limit int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, limit: limit, logger: logger}
}

// Dispatch addresses a copy of msg to each recipient and waits for every
// send to finish. A failed send never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, msg mail.Message, recipients []string) Outcome {
	ctx, span := tracer.Start(ctx, "dispatch.run")
	defer span.End()
	span.SetAttributes(attribute.Int("dispatch.recipients", len(recipients)))

	results := make([]Result, len(recipients))

	var g errgroup.Group
	if d.limit > 0 {
		g.SetLimit(d.limit)
	}

	for i, to := range recipients {
		m := msg.Clone()
		m.To = to

		g.Go(func() error {
			id, err := d.sender.Send(ctx, m)
			results[i] = Result{Recipient: to, MessageID: id, Err: err}

			if err != nil {
				d.logger.ErrorContext(ctx, "cannot deliver report",
					slog.String("recipient", to),
					slog.String("error", err.Error()))
				return nil
			}

			d.logger.InfoContext(ctx, "delivered report",
				slog.String("recipient", to),
				slog.String("messageID", id))
			return nil
		})
	}

	_ = g.Wait()

	out := Outcome{Results: results}
	span.SetAttributes(attribute.Int("dispatch.failed", len(out.Failed())))
	return out
}
