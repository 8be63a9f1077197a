package execution

import (
	"time"

	"go-broker/internal/features/catalog"
	"go-broker/pkg/condition"
)

// Column describes one projected output column
type Column struct {
	ID    string             `json:"id"`
	Label string             `json:"label"`
	Type  catalog.ColumnType `json:"type"`
}

// CompiledQuery is a parameterised statement ready to run against report storage.
// Values only ever travel in Args.
type CompiledQuery struct {
	ReportType string            `json:"report_type"`
	Dialect    condition.Dialect `json:"dialect"`
	SQL        string            `json:"sql"`
	CountSQL   string            `json:"count_sql"`
	Args       []any             `json:"args"`
	Columns    []Column          `json:"columns"`

	Select  string `json:"select"`
	From    string `json:"from"`
	Where   string `json:"where,omitempty"`
	OrderBy string `json:"order_by,omitempty"`
}

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts the known formats and defaults to table
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "":
		return FormatTable, true
	case FormatTable, FormatCSV, FormatExcel, FormatPDF:
		return Format(s), true
	}
	return "", false
}

// ExecutionResult is one page of a report run. Rows are keyed by column label.
type ExecutionResult struct {
	ExecutionID   string           `json:"execution_id"`
	ReportType    string           `json:"report_type"`
	Columns       []Column         `json:"columns"`
	Rows          []map[string]any `json:"rows"`
	TotalCount    int64            `json:"total_count"`
	ExecutionTime time.Duration    `json:"execution_time_ns"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Format        Format           `json:"format"`
	Limit         int              `json:"limit"`
	Offset        int              `json:"offset"`
}
