// Package events provides the run summary shared by the alert, metrics and
// event publishers.
package events

import "time"

// SourceSummary is the per-source part of a run summary.
type SourceSummary struct {
	Source   string `json:"source"`
	Active   int    `json:"active"`
	Expiring int    `json:"expiring"`
	Rejected int    `json:"rejected"`
	Error    string `json:"error,omitempty"`
}

// Delivery is the mail result for one recipient.
type Delivery struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"messageID,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunSummary describes one report run.
type RunSummary struct {
	RunID        string          `json:"runID"`
	AccountID    string          `json:"accountID,omitempty"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	Horizon      time.Time       `json:"horizon"`
	Sources      []SourceSummary `json:"sources"`
	Recipients   int             `json:"recipients"`
	Deliveries   []Delivery      `json:"deliveries"`
	ArchiveKey   string          `json:"archiveKey,omitempty"`
	ArchiveError string          `json:"archiveError,omitempty"`
}

// Expiring is the number of expiring reservations across sources.
func (s *RunSummary) Expiring() int {
	n := 0
	for _, src := range s.Sources {
		n += src.Expiring
	}
	return n
}

// FailedSources returns the sources whose query failed.
func (s *RunSummary) FailedSources() []string {
	var failed []string
	for _, src := range s.Sources {
		if src.Error != "" {
			failed = append(failed, src.Source)
		}
	}
	return failed
}

// FailedRecipients returns the recipients whose delivery failed.
func (s *RunSummary) FailedRecipients() []string {
	var failed []string
	for _, d := range s.Deliveries {
		if d.Error != "" {
			failed = append(failed, d.Recipient)
		}
	}
	return failed
}

// Degraded reports whether any part of the run failed or nobody was mailed.
func (s *RunSummary) Degraded() bool {
	return s.Recipients == 0 ||
		s.ArchiveError != "" ||
		len(s.FailedSources()) > 0 ||
		len(s.FailedRecipients()) > 0
}
