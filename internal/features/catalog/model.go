package catalog

import "slices"

type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
)

// SQL returns the join keyword, e.g. "LEFT JOIN"
func (k JoinKind) SQL() string {
	switch k {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "INNER JOIN"
	}
}

func (k JoinKind) Valid() bool {
	switch k {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
		return true
	}
	return false
}

type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnDate     ColumnType = "date"
	ColumnCurrency ColumnType = "currency"
	ColumnBoolean  ColumnType = "boolean"
)

type FilterType string

const (
	FilterText        FilterType = "text"
	FilterNumber      FilterType = "number"
	FilterDate        FilterType = "date"
	FilterSelect      FilterType = "select"
	FilterMultiSelect FilterType = "multiselect"
	FilterBoolean     FilterType = "boolean"
	FilterDateRange   FilterType = "date_range"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

var operatorsByType = map[FilterType][]Operator{
	FilterText:        {OpEquals, OpContains, OpStartsWith, OpEndsWith},
	FilterNumber:      {OpEquals, OpGreaterThan, OpLessThan, OpBetween},
	FilterDate:        {OpBetween, OpEquals},
	FilterDateRange:   {OpBetween, OpEquals},
	FilterSelect:      {OpIn, OpNotIn},
	FilterMultiSelect: {OpIn, OpNotIn},
	FilterBoolean:     {OpEquals},
}

// Operators lists the operators legal for a filter type, in display order
func (t FilterType) Operators() []Operator {
	return operatorsByType[t]
}

// Allows reports whether op may be applied to a filter of this type
func (t FilterType) Allows(op Operator) bool {
	return slices.Contains(operatorsByType[t], op)
}

func (t FilterType) Valid() bool {
	_, ok := operatorsByType[t]
	return ok
}

type Join struct {
	Table string   `json:"table" yaml:"table"`
	Kind  JoinKind `json:"kind" yaml:"kind"`
	On    string   `json:"on" yaml:"on"`
	Alias string   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

type ColumnDef struct {
	ID             string     `json:"id"`
	Expression     string     `json:"-"`
	Label          string     `json:"label"`
	Type           ColumnType `json:"type"`
	Sortable       bool       `json:"sortable"`
	Filterable     bool       `json:"filterable"`
	DefaultVisible bool       `json:"default_visible"`
	// Excluded columns back filters and sorting but are never projected.
	Excluded bool `json:"excluded,omitempty"`
}

type FilterOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FilterDef struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       FilterType     `json:"type"`
	Expression string         `json:"-"`
	ColumnID   string         `json:"column_id,omitempty"`
	Options    []FilterOption `json:"options,omitempty"`
	Required   bool           `json:"required"`
	Default    any            `json:"default,omitempty"`
}

// HasOption reports whether v is one of the static options. Filters without options accept anything.
func (f *FilterDef) HasOption(v string) bool {
	if len(f.Options) == 0 {
		return true
	}
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// ReportDataSource is one entry of the catalog. Entries are read-only once registered.
type ReportDataSource struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	BaseEntity string      `json:"base_entity"`
	BaseAlias  string      `json:"base_alias,omitempty"`
	Joins      []Join      `json:"joins"`
	Columns    []ColumnDef `json:"columns"`
	Filters    []FilterDef `json:"filters"`

	columnIndex map[string]int
	filterIndex map[string]int
}

// Column looks up a column definition by id
func (ds *ReportDataSource) Column(id string) (*ColumnDef, bool) {
	if ds.columnIndex != nil {
		i, ok := ds.columnIndex[id]
		if !ok {
			return nil, false
		}
		return &ds.Columns[i], true
	}
	for i := range ds.Columns {
		if ds.Columns[i].ID == id {
			return &ds.Columns[i], true
		}
	}
	return nil, false
}

// Filter looks up a filter definition by id
func (ds *ReportDataSource) Filter(id string) (*FilterDef, bool) {
	if ds.filterIndex != nil {
		i, ok := ds.filterIndex[id]
		if !ok {
			return nil, false
		}
		return &ds.Filters[i], true
	}
	for i := range ds.Filters {
		if ds.Filters[i].ID == id {
			return &ds.Filters[i], true
		}
	}
	return nil, false
}

// DefaultColumns returns the ids of default-visible, projectable columns in catalog order
func (ds *ReportDataSource) DefaultColumns() []string {
	var ids []string
	for _, c := range ds.Columns {
		if c.DefaultVisible && !c.Excluded {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
