package config

import (
	"os"
	"time"

	"github.com/ab0utbla-k/ri-expiration-report/internal/env"
)

const (
	DefaultMailRegion       = "us-east-1"
	DefaultLookaheadDays    = 31
	DefaultRecipientTable   = "ri_exp_mailing"
	DefaultArchiveBucket    = "ri-exp-contents"
	DefaultArchiveSuffix    = "ri_exp.html"
	DefaultMailSubject      = "Amazon RI Expiration Notification"
	DefaultMetricNamespace  = "ReservationExpiry"
	DefaultMaxParallelSends = 10
)

// Config is the explicit configuration of one report job. It is built once at
// start-up and passed to every component that needs it.
type Config struct {
	// TargetRegion is where reservations are queried and recipients are read.
	TargetRegion string
	// MailRegion is the SES region.
	MailRegion string
	// SenderAddress is the From address. It may be a Secrets Manager ARN until
	// resolved at start-up.
	SenderAddress string
	LookaheadDays int

	RecipientTable string
	ArchiveBucket  string
	ArchiveSuffix  string

	MailSubject      string
	AttachExports    bool
	ScratchDir       string
	VerifyRecipients bool
	MaxParallelSends int

	AlertTopicARN   string
	EventBusName    string
	MetricNamespace string
}

// Lookahead returns the expiration window as a duration.
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.LookaheadDays) * 24 * time.Hour
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	targetRegion, err := env.GetRequired("TARGET_REGION", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}

	sender, err := env.GetRequired("SENDER_ADDRESS", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TargetRegion:  targetRegion,
		SenderAddress: sender,
		MailRegion:    env.Get("MAIL_REGION", DefaultMailRegion, env.ParseNonEmptyString),
		LookaheadDays: env.Get("LOOKAHEAD_DAYS", DefaultLookaheadDays, env.ParsePositiveInt),

		RecipientTable: env.Get("RECIPIENT_TABLE", DefaultRecipientTable, env.ParseNonEmptyString),
		ArchiveBucket:  env.Get("ARCHIVE_BUCKET", DefaultArchiveBucket, env.ParseNonEmptyString),
		ArchiveSuffix:  env.Get("ARCHIVE_SUFFIX", DefaultArchiveSuffix, env.ParseNonEmptyString),

		MailSubject:      env.Get("MAIL_SUBJECT", DefaultMailSubject, env.ParseNonEmptyString),
		AttachExports:    env.Get("ATTACH_EXPORTS", false, env.ParseBool),
		ScratchDir:       env.Get("SCRATCH_DIR", os.TempDir(), env.ParseNonEmptyString),
		VerifyRecipients: env.Get("VERIFY_RECIPIENTS", true, env.ParseBool),
		MaxParallelSends: env.Get("MAX_PARALLEL_SENDS", DefaultMaxParallelSends, env.ParsePositiveInt),

		AlertTopicARN:   env.Get("ALERT_TOPIC_ARN", "", env.ParseString),
		EventBusName:    env.Get("EVENT_BUS_NAME", "", env.ParseString),
		MetricNamespace: env.Get("METRIC_NAMESPACE", DefaultMetricNamespace, env.ParseNonEmptyString),
	}

	return cfg, nil
}
