package report

import (
	"time"

	"go-broker/internal/features/catalog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type ColumnSelection struct {
	ColumnID string `json:"column_id" bson:"column_id" yaml:"column_id"`
	Order    int    `json:"order" bson:"order" yaml:"order"`
}

type FilterValue struct {
	Operator catalog.Operator `json:"operator" bson:"operator" yaml:"operator"`
	Value    any              `json:"value" bson:"value" yaml:"value"`
}

type SortSpec struct {
	ColumnID  string        `json:"column_id" bson:"column_id" yaml:"column_id"`
	Direction SortDirection `json:"direction" bson:"direction" yaml:"direction"`
	Order     int           `json:"order" bson:"order" yaml:"order"`
}

// ReportDefinition is what a user builds: a report type plus column, filter and sort choices
type ReportDefinition struct {
	ReportType string                 `json:"report_type" bson:"report_type" yaml:"report_type"`
	Columns    []ColumnSelection      `json:"columns" bson:"columns" yaml:"columns"`
	Filters    map[string]FilterValue `json:"filters,omitempty" bson:"filters,omitempty" yaml:"filters,omitempty"`
	Sorting    []SortSpec             `json:"sorting,omitempty" bson:"sorting,omitempty" yaml:"sorting,omitempty"`
}

// SavedReport represents a persisted, named definition owned by a user of a tenant
type SavedReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    string             `json:"tenant_id" bson:"tenant_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Definition  ReportDefinition   `json:"definition" bson:"definition"`
	CreatedBy   string             `json:"created_by" bson:"created_by"`
	IsPublic    bool               `json:"is_public" bson:"is_public"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
	UpdatedBy   string             `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

// SaveReportRequest is the body accepted for create and update
type SaveReportRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IsPublic    bool             `json:"is_public"`
	Definition  ReportDefinition `json:"definition"`
}

// ExecuteRequest runs an ad-hoc definition
type ExecuteRequest struct {
	Definition ReportDefinition `json:"definition"`
	Format     string           `json:"format"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	TimeoutMs  int              `json:"timeout_ms"`
}
