package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is the content of one exported workbook: every active reservation of
// a source, with the expiring ones flagged.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
	Flagged []bool
}

// Workbook is an exported xlsx file.
type Workbook struct {
	Filename string
	Data     []byte
}

// Exporter writes sheets as xlsx workbooks into a scratch directory.
type Exporter struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// NewExporter creates an exporter writing into dir. File names are
// prefix + "_" + lowercase sheet name + ".xlsx".
func NewExporter(dir, prefix string, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, prefix: prefix, logger: logger}
}

// Export writes sheet to disk and returns the workbook bytes. Flagged rows
// are filled with the highlight color.
func (e *Exporter) Export(sheet Sheet) (Workbook, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("cannot close workbook",
				slog.String("sheet", sheet.Name),
				slog.String("error", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return Workbook{}, fmt.Errorf("cannot name sheet %s: %w", sheet.Name, err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return Workbook{}, fmt.Errorf("cannot set header row: %w", err)
	}

	flagged, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(HighlightColor, "#")},
		},
	})
	if err != nil {
		return Workbook{}, fmt.Errorf("cannot create highlight style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(max(len(sheet.Headers), 1))
	if err != nil {
		return Workbook{}, fmt.Errorf("cannot resolve last column: %w", err)
	}

	for i, r := range sheet.Rows {
		rowNum := i + 2
		start, _ := excelize.JoinCellName("A", rowNum)

		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet.Name, start, &row); err != nil {
			return Workbook{}, fmt.Errorf("cannot add row %d: %w", rowNum, err)
		}

		if i < len(sheet.Flagged) && sheet.Flagged[i] {
			end, _ := excelize.JoinCellName(lastCol, rowNum)
			if err := f.SetCellStyle(sheet.Name, start, end, flagged); err != nil {
				return Workbook{}, fmt.Errorf("cannot highlight row %d: %w", rowNum, err)
			}
		}
	}

	for i := range sheet.Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet.Name, col, col, columnWidth(sheet, i)); err != nil {
			return Workbook{}, fmt.Errorf("cannot set width of column %s: %w", col, err)
		}
	}

	name := fmt.Sprintf("%s_%s.xlsx", e.prefix, strings.ToLower(sheet.Name))
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return Workbook{}, fmt.Errorf("cannot save workbook %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Workbook{}, fmt.Errorf("cannot read workbook %s: %w", path, err)
	}

	return Workbook{Filename: name, Data: data}, nil
}

func columnWidth(sheet Sheet, col int) float64 {
	longest := len(sheet.Headers[col])
	for _, r := range sheet.Rows {
		if col < len(r) && len(r[col]) > longest {
			longest = len(r[col])
		}
	}
	return float64(longest) + 2
}
