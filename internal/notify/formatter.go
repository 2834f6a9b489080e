// Package notify alerts operators when a report run is degraded.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
)

// FormatText converts a run summary to a human-readable alert message.
func FormatText(s *events.RunSummary) string {
	var msg strings.Builder

	msg.WriteString("Reservation expiration report run ")
	msg.WriteString(s.RunID)
	msg.WriteString(" completed with problems.\n")
	if s.AccountID != "" {
		msg.WriteString("AccountID: ")
		msg.WriteString(s.AccountID)
		msg.WriteString("\n")
	}
	fmt.Fprintf(&msg, "Horizon: %s\n\n", s.Horizon.Format(time.RFC3339))

	msg.WriteString("Sources:\n")
	for _, src := range s.Sources {
		if src.Error != "" {
			fmt.Fprintf(&msg, "- %s: FAILED (%s)\n", src.Source, src.Error)
			continue
		}
		fmt.Fprintf(&msg, "- %s: %d active, %d expiring", src.Source, src.Active, src.Expiring)
		if src.Rejected > 0 {
			fmt.Fprintf(&msg, ", %d malformed", src.Rejected)
		}
		msg.WriteString("\n")
	}

	msg.WriteString("\n")
	if s.Recipients == 0 {
		msg.WriteString("No recipients configured; the report was not mailed.\n")
	} else {
		fmt.Fprintf(&msg, "Delivered to %d of %d recipients.\n",
			s.Recipients-len(s.FailedRecipients()), s.Recipients)
		for _, d := range s.Deliveries {
			if d.Error != "" {
				fmt.Fprintf(&msg, "- %s: %s\n", d.Recipient, d.Error)
			}
		}
	}

	if s.ArchiveError != "" {
		fmt.Fprintf(&msg, "\nArchive %s failed: %s\n", s.ArchiveKey, s.ArchiveError)
	}

	fmt.Fprintf(&msg, "\nTimestamp: %s", s.GeneratedAt.Format(time.RFC3339))

	return msg.String()
}
