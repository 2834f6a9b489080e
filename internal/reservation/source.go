// Package reservation normalizes prepaid capacity reservations from several
// AWS services into one row shape and selects the ones that expire soon.
package reservation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind names a reservation source service.
type Kind string

const (
	KindEC2           Kind = "ec2"
	KindRDS           Kind = "rds"
	KindRedshift      Kind = "redshift"
	KindElastiCache   Kind = "elasticache"
	KindElasticsearch Kind = "elasticsearch"
)

// EndColumn is the column that carries the computed end timestamp.
const EndColumn = "End"

// RawRecord is one reservation as returned by its service, encoded as a JSON
// object. Field sets differ between services.
type RawRecord []byte

// Field looks up a top-level field by name.
func (r RawRecord) Field(name string) gjson.Result {
	return gjson.GetBytes(r, name)
}

// NewRawRecords encodes service response items as raw records.
func NewRawRecords[T any](items []T) ([]RawRecord, error) {
	records := make([]RawRecord, 0, len(items))
	for i := range items {
		b, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("cannot encode record %d: %w", i, err)
		}
		records = append(records, b)
	}
	return records, nil
}

// EndRule declares how a source expresses the end of a reservation: either a
// timestamp field or a duration in seconds added to the start.
type EndRule struct {
	Field         string
	DurationField string
}

// Source describes the field layout of one reservation service and the
// columns shown for it in the report.
type Source struct {
	Kind  Kind
	Title string

	IDField    string
	StartField string
	StateField string
	TypeField  string
	CountField string
	End        EndRule

	// Columns is the declared header set, so a source with no records still
	// renders a header row.
	Columns []string
}

// Sources returns the five reservation sources in report order.
func Sources() []Source {
	return []Source{
		{
			Kind:       KindEC2,
			Title:      "EC2",
			IDField:    "ReservedInstancesId",
			StartField: "Start",
			StateField: "State",
			TypeField:  "InstanceType",
			CountField: "InstanceCount",
			End:        EndRule{Field: "End"},
			Columns:    []string{"ReservedInstancesId", "Start", "State", EndColumn, "InstanceType", "InstanceCount"},
		},
		{
			Kind:       KindRDS,
			Title:      "RDS",
			IDField:    "ReservedDBInstanceId",
			StartField: "StartTime",
			StateField: "State",
			TypeField:  "DBInstanceClass",
			CountField: "DBInstanceCount",
			End:        EndRule{DurationField: "Duration"},
			Columns:    []string{"ReservedDBInstanceId", "StartTime", "State", EndColumn, "DBInstanceClass", "DBInstanceCount"},
		},
		{
			Kind:       KindRedshift,
			Title:      "Redshift",
			IDField:    "ReservedNodeId",
			StartField: "StartTime",
			StateField: "State",
			TypeField:  "NodeType",
			CountField: "NodeCount",
			End:        EndRule{DurationField: "Duration"},
			Columns:    []string{"ReservedNodeId", "StartTime", "State", EndColumn, "NodeType", "NodeCount"},
		},
		{
			Kind:       KindElastiCache,
			Title:      "ElastiCache",
			IDField:    "ReservedCacheNodeId",
			StartField: "StartTime",
			StateField: "State",
			TypeField:  "CacheNodeType",
			CountField: "CacheNodeCount",
			End:        EndRule{DurationField: "Duration"},
			Columns:    []string{"ReservedCacheNodeId", "StartTime", "State", EndColumn, "CacheNodeType", "CacheNodeCount"},
		},
		{
			Kind:       KindElasticsearch,
			Title:      "ElasticSearch",
			IDField:    "ReservedElasticsearchInstanceId",
			StartField: "StartTime",
			StateField: "State",
			TypeField:  "ElasticsearchInstanceType",
			CountField: "ElasticsearchInstanceCount",
			End:        EndRule{DurationField: "Duration"},
			Columns: []string{
				"ReservationName", "ReservedElasticsearchInstanceId", "StartTime", "State",
				EndColumn, "ElasticsearchInstanceType", "ElasticsearchInstanceCount",
			},
		},
	}
}

// Cells renders row as one string per declared column.
func (s Source) Cells(row Row) []string {
	cells := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		cells[i] = s.cell(row, col)
	}
	return cells
}

func (s Source) cell(row Row, col string) string {
	switch col {
	case EndColumn, s.End.Field:
		return FormatTime(row.End)
	case s.StartField:
		return FormatTime(row.Start)
	case s.IDField:
		return row.ID
	case s.StateField:
		return row.State
	case s.TypeField:
		return row.ResourceType
	case s.CountField:
		return strconv.FormatInt(row.Count, 10)
	default:
		return row.Record.Field(col).String()
	}
}
