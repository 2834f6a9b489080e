package report

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderText renders the sections as plain text tables under a heading line.
// It is used for the text part of the mail and by the local CLI.
func RenderText(heading string, sections []Section) string {
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\r\n")

	for _, s := range sections {
		tw := table.NewWriter()
		tw.SetTitle(s.Name)
		tw.SetStyle(textStyle())

		header := make(table.Row, len(s.Headers))
		for i, h := range s.Headers {
			header[i] = h
		}
		tw.AppendHeader(header)

		for _, r := range s.Rows {
			row := make(table.Row, len(r))
			for i, v := range r {
				row[i] = v
			}
			tw.AppendRow(row)
		}

		if len(s.Rows) == 0 {
			tw.AppendFooter(table.Row{"no reservations expiring"})
		}

		b.WriteString("\r\n")
		b.WriteString(tw.Render())
		b.WriteString("\r\n")
	}

	return b.String()
}

// textStyle keeps header names in their original case.
func textStyle() table.Style {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	return style
}
