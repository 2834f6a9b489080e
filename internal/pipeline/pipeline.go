// Package pipeline collects reservations from every source, keeps the ones
// expiring within the horizon and turns them into report sections.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ri-expiration-report/internal/reservation"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/pipeline")

// Querier lists the raw reservations of one source.
type Querier interface {
	ListActive(ctx context.Context, kind reservation.Kind) ([]reservation.RawRecord, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used to compute the horizon.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithSources replaces the default source list.
func WithSources(sources []reservation.Source) Option {
	return func(p *Pipeline) {
		p.sources = sources
	}
}

// Pipeline runs the query, normalize and filter steps for each source.
type Pipeline struct {
	querier   Querier
	lookahead time.Duration
	sources   []reservation.Source
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a pipeline over the default sources.
func New(querier Querier, lookahead time.Duration, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		querier:   querier,
		lookahead: lookahead,
		sources:   reservation.Sources(),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every source in order. A source whose query fails is kept
// with an empty table and its error, and the run continues.
func (p *Pipeline) Run(ctx context.Context) *Report {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	now := p.now().UTC()
	r := &Report{
		GeneratedAt: now,
		Horizon:     reservation.Horizon(now, p.lookahead),
		Results:     make([]SourceResult, 0, len(p.sources)),
	}
	span.SetAttributes(attribute.String("report.horizon", r.Horizon.Format(time.RFC3339)))

	for _, src := range p.sources {
		r.Results = append(r.Results, p.runSource(ctx, src, r.Horizon))
	}

	span.SetAttributes(
		attribute.Int("report.expiring", r.ExpiringCount()),
		attribute.Int("report.failed_sources", len(r.FailedSources())),
	)
	return r
}

func (p *Pipeline) runSource(ctx context.Context, src reservation.Source, horizon time.Time) SourceResult {
	records, err := p.querier.ListActive(ctx, src.Kind)
	if err != nil {
		p.logger.ErrorContext(ctx, "cannot query reservations",
			slog.String("source", src.Title),
			slog.String("error", err.Error()))

		return SourceResult{
			Source:   src,
			Table:    reservation.Normalize(src, nil),
			Expiring: []reservation.Row{},
			Err:      err,
		}
	}

	table := reservation.Normalize(src, records)
	for _, rej := range table.Rejected {
		p.logger.WarnContext(ctx, "skipping malformed reservation",
			slog.String("source", src.Title),
			slog.Int("index", rej.Index),
			slog.String("id", rej.ID),
			slog.String("reason", rej.Reason))
	}

	expiring := reservation.Expiring(table.Rows, horizon)
	p.logger.InfoContext(ctx, "processed reservations",
		slog.String("source", src.Title),
		slog.Int("records", len(records)),
		slog.Int("active", len(table.Rows)),
		slog.Int("expiring", len(expiring)))

	return SourceResult{Source: src, Table: table, Expiring: expiring}
}
