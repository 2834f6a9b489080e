package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/ri-expiration-report/internal/archive"
	"github.com/ab0utbla-k/ri-expiration-report/internal/config"
	"github.com/ab0utbla-k/ri-expiration-report/internal/dispatch"
	"github.com/ab0utbla-k/ri-expiration-report/internal/handler"
	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
	"github.com/ab0utbla-k/ri-expiration-report/internal/metrics"
	"github.com/ab0utbla-k/ri-expiration-report/internal/notify"
	"github.com/ab0utbla-k/ri-expiration-report/internal/pipeline"
	"github.com/ab0utbla-k/ri-expiration-report/internal/publish"
	"github.com/ab0utbla-k/ri-expiration-report/internal/query"
	"github.com/ab0utbla-k/ri-expiration-report/internal/recipient"
	"github.com/ab0utbla-k/ri-expiration-report/internal/report"
	"github.com/ab0utbla-k/ri-expiration-report/internal/secret"
	"github.com/ab0utbla-k/ri-expiration-report/internal/telemetry"
)

func main() {
	startTime := time.Now()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	logger.Info("starting reservation expiration report")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.TargetRegion))
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	sender, err := secret.Resolve(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.SenderAddress)
	if err != nil {
		logger.Error("cannot resolve sender address", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mailCfg := awsCfg.Copy()
	mailCfg.Region = cfg.MailRegion
	sesClient := ses.NewFromConfig(mailCfg)

	deps := handler.Deps{
		Directory:  recipient.NewDirectory(dynamodb.NewFromConfig(awsCfg), cfg.RecipientTable),
		Pipeline:   pipeline.New(query.NewService(query.NewClients(awsCfg)), cfg.Lookahead(), logger),
		Archive:    archive.NewS3(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket),
		Dispatcher: dispatch.New(mail.NewSES(sesClient, sender), cfg.MaxParallelSends, logger),
		Metrics:    metrics.NewRecorder(cloudwatch.NewFromConfig(awsCfg), cfg.MetricNamespace),
	}

	if cfg.VerifyRecipients {
		deps.Verifier = mail.NewVerifier(sesClient, logger)
	}

	if cfg.AttachExports {
		deps.Exporter = report.NewExporter(cfg.ScratchDir, "ri_exp", logger)
	}

	if cfg.AlertTopicARN != "" {
		deps.Alerter = notify.NewSNS(sns.NewFromConfig(awsCfg), cfg.AlertTopicARN)
	}

	if cfg.EventBusName != "" {
		deps.Publisher = publish.NewPublisher(eventbridge.NewFromConfig(awsCfg), cfg.EventBusName)
	}

	tp, err := telemetry.NewTracerProvider(ctx, "")
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info(
		"started reservation expiration report",
		slog.String("region", cfg.TargetRegion),
		slog.String("mailRegion", cfg.MailRegion),
		slog.Int("lookaheadDays", cfg.LookaheadDays),
		slog.Bool("attachExports", cfg.AttachExports),
		slog.Float64("initDurationSec", time.Since(startTime).Seconds()),
	)

	h := handler.NewReportHandler(deps, handler.Options{
		Subject:       cfg.MailSubject,
		ArchiveSuffix: cfg.ArchiveSuffix,
		AttachExports: cfg.AttachExports,
	}, logger)

	lambda.Start(
		otellambda.InstrumentHandler(
			h.HandleRequest,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}
