// Command report renders the reservation expiration report locally without
// archiving or mailing it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"github.com/ab0utbla-k/ri-expiration-report/internal/config"
	"github.com/ab0utbla-k/ri-expiration-report/internal/pipeline"
	"github.com/ab0utbla-k/ri-expiration-report/internal/query"
	"github.com/ab0utbla-k/ri-expiration-report/internal/report"
)

type args struct {
	EnvFile       string `arg:"--env-file" default:".env" help:"dotenv file loaded before parsing"`
	Region        string `arg:"env:TARGET_REGION,required"`
	LookaheadDays int    `arg:"--lookahead-days,env:LOOKAHEAD_DAYS" default:"31"`
	Subject       string `arg:"env:MAIL_SUBJECT" default:"Amazon RI Expiration Notification"`
	OutDir        string `arg:"-o,--out-dir" default:"." help:"directory for ri_exp.html and xlsx exports"`
	Exports       bool   `arg:"--exports,env:ATTACH_EXPORTS" help:"also write one xlsx workbook per source"`
	Quiet         bool   `arg:"-q" help:"do not print the text report"`
}

func (args) Description() string {
	return "Renders the reservation expiration report from the current AWS account."
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := loadEnvFile(os.Args[1:]); err != nil {
		logger.Error("cannot load env file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var a args
	arg.MustParse(&a)

	if a.LookaheadDays <= 0 {
		a.LookaheadDays = config.DefaultLookaheadDays
	}

	if err := run(context.Background(), a, logger); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadEnvFile loads the --env-file value, or .env, before go-arg reads the
// environment. A missing file is not an error.
func loadEnvFile(argv []string) error {
	path := ".env"
	for i, v := range argv {
		if v == "--env-file" && i+1 < len(argv) {
			path = argv[i+1]
		}
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func run(ctx context.Context, a args, logger *slog.Logger) error {
	cfgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(cfgCtx, awsconfig.WithRegion(a.Region))
	if err != nil {
		return fmt.Errorf("cannot load aws config: %w", err)
	}

	lookahead := time.Duration(a.LookaheadDays) * 24 * time.Hour
	rep := pipeline.New(query.NewService(query.NewClients(awsCfg)), lookahead, logger).Run(ctx)

	if err := os.MkdirAll(a.OutDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	html, err := rep.HTML()
	if err != nil {
		return err
	}

	path := filepath.Join(a.OutDir, config.DefaultArchiveSuffix)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	logger.Info("wrote html report", slog.String("path", path))

	if a.Exports {
		exp := report.NewExporter(a.OutDir, "ri_exp", logger)
		for _, sheet := range rep.Sheets() {
			wb, err := exp.Export(sheet)
			if err != nil {
				return err
			}
			logger.Info("wrote export", slog.String("file", wb.Filename), slog.Int("rows", len(sheet.Rows)))
		}
	}

	if !a.Quiet {
		fmt.Println(rep.Text(a.Subject))
	}

	if failed := rep.FailedSources(); len(failed) > 0 {
		return fmt.Errorf("sources failed: %v", failed)
	}

	return nil
}
