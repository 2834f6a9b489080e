package pipeline

import (
	"time"

	"github.com/ab0utbla-k/ri-expiration-report/internal/report"
	"github.com/ab0utbla-k/ri-expiration-report/internal/reservation"
)

// SourceResult is the outcome of one source.
type SourceResult struct {
	Source   reservation.Source
	Table    reservation.Table
	Expiring []reservation.Row
	Err      error
}

// Report is the result of one pipeline run.
type Report struct {
	GeneratedAt time.Time
	Horizon     time.Time
	Results     []SourceResult
}

// Sections returns one report section per source, in source order, holding
// the expiring rows.
func (r *Report) Sections() []report.Section {
	sections := make([]report.Section, 0, len(r.Results))
	for _, res := range r.Results {
		rows := make([][]string, 0, len(res.Expiring))
		for _, row := range res.Expiring {
			rows = append(rows, res.Source.Cells(row))
		}
		sections = append(sections, report.Section{
			Name:    res.Source.Title,
			Headers: res.Source.Columns,
			Rows:    rows,
		})
	}
	return sections
}

// Sheets returns one export sheet per source with every active row, flagging
// the ones that expire within the horizon.
func (r *Report) Sheets() []report.Sheet {
	sheets := make([]report.Sheet, 0, len(r.Results))
	for _, res := range r.Results {
		sheet := report.Sheet{
			Name:    res.Source.Title,
			Headers: res.Source.Columns,
			Rows:    make([][]string, 0, len(res.Table.Rows)),
			Flagged: make([]bool, 0, len(res.Table.Rows)),
		}
		for _, row := range res.Table.Rows {
			sheet.Rows = append(sheet.Rows, res.Source.Cells(row))
			sheet.Flagged = append(sheet.Flagged, row.ExpiresBy(r.Horizon))
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

// HTML renders the sections as the report document.
func (r *Report) HTML() (string, error) {
	return report.RenderHTML(r.Sections())
}

// Text renders the sections as plain text under heading.
func (r *Report) Text(heading string) string {
	return report.RenderText(heading, r.Sections())
}

// ExpiringCount is the number of expiring rows across all sources.
func (r *Report) ExpiringCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Expiring)
	}
	return n
}

// FailedSources returns the titles of sources whose query failed.
func (r *Report) FailedSources() []string {
	var failed []string
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res.Source.Title)
		}
	}
	return failed
}
