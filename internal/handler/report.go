package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/ab0utbla-k/ri-expiration-report/internal/archive"
	"github.com/ab0utbla-k/ri-expiration-report/internal/dispatch"
	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
	"github.com/ab0utbla-k/ri-expiration-report/internal/pipeline"
	"github.com/ab0utbla-k/ri-expiration-report/internal/report"
)

type Directory interface {
	List(ctx context.Context) ([]string, error)
}

type Verifier interface {
	EnsureVerified(ctx context.Context, recipients []string) []string
}

type Runner interface {
	Run(ctx context.Context) *pipeline.Report
}

type Archiver interface {
	Put(ctx context.Context, key string, body []byte) error
}

type Exporter interface {
	Export(sheet report.Sheet) (report.Workbook, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg mail.Message, recipients []string) dispatch.Outcome
}

type Recorder interface {
	Record(ctx context.Context, summary *events.RunSummary) error
}

type Alerter interface {
	Alert(ctx context.Context, summary *events.RunSummary) error
}

type Publisher interface {
	Publish(ctx context.Context, summary *events.RunSummary) error
}

// Deps are the collaborators of a report run. Verifier, Exporter, Metrics,
// Alerter and Publisher are optional.
type Deps struct {
	Directory  Directory
	Verifier   Verifier
	Pipeline   Runner
	Archive    Archiver
	Exporter   Exporter
	Dispatcher Dispatcher
	Metrics    Recorder
	Alerter    Alerter
	Publisher  Publisher
}

type Options struct {
	Subject       string
	ArchiveSuffix string
	AttachExports bool
}

// Response is the job result returned to the Lambda runtime.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type partialBody struct {
	Status           string   `json:"status"`
	RunID            string   `json:"runID"`
	FailedRecipients []string `json:"failedRecipients,omitempty"`
	FailedSources    []string `json:"failedSources,omitempty"`
	ArchiveError     string   `json:"archiveError,omitempty"`
}

type ReportHandler struct {
	deps     Deps
	opts     Options
	logger   *slog.Logger
	newRunID func() string
}

func NewReportHandler(deps Deps, opts Options, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		deps:     deps,
		opts:     opts,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

func (h *ReportHandler) HandleRequest(ctx context.Context, event awsevents.CloudWatchEvent) (Response, error) {
	runID := h.newRunID()
	logger := h.logger.With(slog.String("runID", runID))

	recipients, err := h.deps.Directory.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "cannot list recipients", slog.String("error", err.Error()))
		return Response{}, err
	}
	if len(recipients) == 0 {
		logger.WarnContext(ctx, "no recipients configured")
	}

	if h.deps.Verifier != nil && len(recipients) > 0 {
		h.deps.Verifier.EnsureVerified(ctx, recipients)
	}

	rep := h.deps.Pipeline.Run(ctx)

	html, err := rep.HTML()
	if err != nil {
		logger.ErrorContext(ctx, "cannot render report", slog.String("error", err.Error()))
		return Response{}, err
	}

	summary := &events.RunSummary{
		RunID:       runID,
		AccountID:   event.AccountID,
		GeneratedAt: rep.GeneratedAt,
		Horizon:     rep.Horizon,
		Sources:     sourceSummaries(rep),
		Recipients:  len(recipients),
		ArchiveKey:  archive.Key(rep.GeneratedAt, h.opts.ArchiveSuffix),
	}

	if err := h.deps.Archive.Put(ctx, summary.ArchiveKey, []byte(html)); err != nil {
		logger.ErrorContext(ctx, "cannot archive report",
			slog.String("key", summary.ArchiveKey),
			slog.String("error", err.Error()))
		summary.ArchiveError = err.Error()
	}

	if len(recipients) > 0 {
		msg := mail.Message{
			Subject:     h.opts.Subject,
			HTML:        html,
			Text:        rep.Text(h.opts.Subject),
			Attachments: h.attachments(ctx, logger, rep),
		}

		outcome := h.deps.Dispatcher.Dispatch(ctx, msg, recipients)
		summary.Deliveries = deliveries(outcome)
	}

	h.report(ctx, logger, summary)

	return respond(summary)
}

func (h *ReportHandler) attachments(ctx context.Context, logger *slog.Logger, rep *pipeline.Report) []mail.Attachment {
	if !h.opts.AttachExports || h.deps.Exporter == nil {
		return nil
	}

	var attachments []mail.Attachment
	for _, sheet := range rep.Sheets() {
		wb, err := h.deps.Exporter.Export(sheet)
		if err != nil {
			logger.WarnContext(ctx, "cannot export sheet",
				slog.String("sheet", sheet.Name),
				slog.String("error", err.Error()))
			continue
		}
		attachments = append(attachments, mail.Attachment{
			Filename:    wb.Filename,
			ContentType: report.XLSXContentType,
			Data:        wb.Data,
		})
	}
	return attachments
}

// report emits metrics, the degraded-run alert and the summary event. None
// of them affect the response.
func (h *ReportHandler) report(ctx context.Context, logger *slog.Logger, summary *events.RunSummary) {
	if h.deps.Metrics != nil {
		if err := h.deps.Metrics.Record(ctx, summary); err != nil {
			logger.WarnContext(ctx, "cannot record metrics", slog.String("error", err.Error()))
		}
	}

	if summary.Degraded() && h.deps.Alerter != nil {
		if err := h.deps.Alerter.Alert(ctx, summary); err != nil {
			logger.WarnContext(ctx, "cannot send alert", slog.String("error", err.Error()))
		}
	}

	if h.deps.Publisher != nil {
		if err := h.deps.Publisher.Publish(ctx, summary); err != nil {
			logger.WarnContext(ctx, "cannot publish run summary", slog.String("error", err.Error()))
		}
	}

	logger.InfoContext(ctx, "report run finished",
		slog.Int("expiring", summary.Expiring()),
		slog.Int("recipients", summary.Recipients),
		slog.Int("failedRecipients", len(summary.FailedRecipients())),
		slog.Int("failedSources", len(summary.FailedSources())),
		slog.Bool("degraded", summary.Degraded()))
}

func sourceSummaries(rep *pipeline.Report) []events.SourceSummary {
	out := make([]events.SourceSummary, 0, len(rep.Results))
	for _, res := range rep.Results {
		s := events.SourceSummary{
			Source:   res.Source.Title,
			Active:   len(res.Table.Rows),
			Expiring: len(res.Expiring),
			Rejected: len(res.Table.Rejected),
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

func deliveries(o dispatch.Outcome) []events.Delivery {
	out := make([]events.Delivery, 0, len(o.Results))
	for _, r := range o.Results {
		d := events.Delivery{Recipient: r.Recipient, MessageID: r.MessageID}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		out = append(out, d)
	}
	return out
}

func respond(s *events.RunSummary) (Response, error) {
	failedRecipients := s.FailedRecipients()
	failedSources := s.FailedSources()

	if len(failedRecipients) == 0 && len(failedSources) == 0 && s.ArchiveError == "" {
		return Response{StatusCode: http.StatusOK, Body: `"success"`}, nil
	}

	body, err := json.Marshal(partialBody{
		Status:           "partial",
		RunID:            s.RunID,
		FailedRecipients: failedRecipients,
		FailedSources:    failedSources,
		ArchiveError:     s.ArchiveError,
	})
	if err != nil {
		return Response{}, fmt.Errorf("cannot marshal response: %w", err)
	}

	return Response{StatusCode: http.StatusMultiStatus, Body: string(body)}, nil
}
