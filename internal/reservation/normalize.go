package reservation

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// StateActive is the only reservation state the report considers.
const StateActive = "active"

// TimeLayout is how timestamps appear in rendered reports.
const TimeLayout = "2006-01-02 15:04:05"

// Row is a reservation in the shape shared by every source.
type Row struct {
	ID           string
	Start        time.Time
	End          time.Time
	State        string
	ResourceType string
	Count        int64

	// Record keeps the source fields for columns outside the shared shape.
	Record RawRecord
}

// ExpiresBy reports whether the reservation ends at or before horizon.
func (r Row) ExpiresBy(horizon time.Time) bool {
	return !r.End.After(horizon)
}

// Rejection records an active record that could not be normalized.
type Rejection struct {
	Index  int
	ID     string
	Reason string
}

// Table is the normalized form of one source's records.
type Table struct {
	Source   Source
	Rows     []Row
	Rejected []Rejection
}

// Normalize keeps the active records of src and converts them to rows. Active
// records without an id, start or end are listed in Rejected instead, so
// every returned row has a well-defined end. An empty input gives an empty
// table.
func Normalize(src Source, records []RawRecord) Table {
	table := Table{Source: src, Rows: []Row{}}

	for i, rec := range records {
		if rec.Field(src.StateField).String() != StateActive {
			continue
		}

		row, err := normalizeRecord(src, rec)
		if err != nil {
			table.Rejected = append(table.Rejected, Rejection{
				Index:  i,
				ID:     rec.Field(src.IDField).String(),
				Reason: err.Error(),
			})
			continue
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

func normalizeRecord(src Source, rec RawRecord) (Row, error) {
	id := rec.Field(src.IDField).String()
	if id == "" {
		return Row{}, fmt.Errorf("missing %s", src.IDField)
	}

	start, err := parseTime(rec.Field(src.StartField), src.StartField)
	if err != nil {
		return Row{}, err
	}

	end, err := endOf(src.End, rec, start)
	if err != nil {
		return Row{}, err
	}

	return Row{
		ID:           id,
		Start:        start,
		End:          end,
		State:        rec.Field(src.StateField).String(),
		ResourceType: rec.Field(src.TypeField).String(),
		Count:        rec.Field(src.CountField).Int(),
		Record:       rec,
	}, nil
}

func endOf(rule EndRule, rec RawRecord, start time.Time) (time.Time, error) {
	if rule.Field != "" {
		return parseTime(rec.Field(rule.Field), rule.Field)
	}

	d := rec.Field(rule.DurationField)
	if d.Type != gjson.Number || d.Int() <= 0 {
		return time.Time{}, fmt.Errorf("missing or invalid %s", rule.DurationField)
	}

	return start.Add(time.Duration(d.Int()) * time.Second), nil
}

func parseTime(v gjson.Result, field string) (time.Time, error) {
	if v.Type != gjson.String {
		return time.Time{}, fmt.Errorf("missing %s", field)
	}

	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}

	return t.UTC(), nil
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
