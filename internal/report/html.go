// Package report renders reservation sections as an HTML document, a plain
// text summary and per-source xlsx workbooks.
package report

import (
	"bytes"
	"fmt"
	"html/template"
)

// HighlightColumn is the header whose cells are highlighted in the HTML report.
const HighlightColumn = "End"

// HighlightColor is the background used for highlighted cells. The HTML
// template spells it out literally.
const HighlightColor = "#D45B5B"

// Section is one titled table of the report.
type Section struct {
	Name    string
	Headers []string
	Rows    [][]string
}

type cell struct {
	Text      string
	Highlight bool
}

type sectionView struct {
	Name   string
	Header []cell
	Rows   [][]cell
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<title>RI Status</title>
<style>
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
  font-size: 10pt;
  width: 1500px;
}
th, td {
  padding: 5px;
  text-align: left;
}
</style>
</head>
<body>
{{- range .}}
<h3>{{.Name}}</h3><table>
<tr>{{range .Header}}<th{{if .Highlight}} bgcolor="#D45B5B"{{end}}>{{.Text}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td{{if .Highlight}} bgcolor="#D45B5B"{{end}}>{{.Text}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// RenderHTML renders the sections in order as one HTML document. Each section
// gets an <h3> title and a table with a header row, even when it has no rows.
// Cells under the "End" header are highlighted; values are escaped.
func RenderHTML(sections []Section) (string, error) {
	views := make([]sectionView, 0, len(sections))
	for _, s := range sections {
		views = append(views, viewOf(s))
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, views); err != nil {
		return "", fmt.Errorf("cannot render html report: %w", err)
	}

	return buf.String(), nil
}

func viewOf(s Section) sectionView {
	highlight := -1
	header := make([]cell, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = cell{Text: h}
		if h == HighlightColumn && highlight < 0 {
			highlight = i
			header[i].Highlight = true
		}
	}

	rows := make([][]cell, len(s.Rows))
	for i, r := range s.Rows {
		cells := make([]cell, len(r))
		for j, v := range r {
			cells[j] = cell{Text: v, Highlight: j == highlight}
		}
		rows[i] = cells
	}

	return sectionView{Name: s.Name, Header: header, Rows: rows}
}
