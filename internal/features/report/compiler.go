package report

import (
	"sort"
	"strings"

	"go-broker/internal/features/catalog"
	"go-broker/internal/features/execution"
	"go-broker/pkg/condition"
)

// Compiler turns validated definitions into parameterised SQL for one dialect.
// It holds no state between calls and is safe for concurrent use.
type Compiler struct {
	Dialect condition.Dialect
}

func NewCompiler(dialect condition.Dialect) *Compiler {
	if dialect == "" {
		dialect = condition.Postgres
	}
	return &Compiler{Dialect: dialect}
}

// Compile renders def with the postgres dialect
func Compile(ds *catalog.ReportDataSource, def ReportDefinition) (*execution.CompiledQuery, error) {
	return NewCompiler(condition.Postgres).Compile(ds, def)
}

// Compile assumes def already passed Validate; anything it cannot render is a *CompileError.
func (c *Compiler) Compile(ds *catalog.ReportDataSource, def ReportDefinition) (*execution.CompiledQuery, error) {
	fail := func(reason string) error {
		return &CompileError{ReportType: ds.ID, Reason: reason}
	}
	if def.ReportType != "" && def.ReportType != ds.ID {
		return nil, fail("definition is for " + def.ReportType)
	}
	if len(def.Columns) == 0 {
		return nil, fail("no columns selected")
	}

	q := &execution.CompiledQuery{ReportType: ds.ID, Dialect: c.Dialect}

	// SELECT
	cols := append([]ColumnSelection(nil), def.Columns...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Order < cols[j].Order })
	selects := make([]string, 0, len(cols))
	for _, sel := range cols {
		col, ok := ds.Column(sel.ColumnID)
		if !ok || col.Excluded {
			return nil, fail("column " + sel.ColumnID + " cannot be projected")
		}
		selects = append(selects, col.Expression+" AS "+c.Dialect.QuoteIdent(col.Label))
		q.Columns = append(q.Columns, execution.Column{ID: col.ID, Label: col.Label, Type: col.Type})
	}
	q.Select = strings.Join(selects, ", ")

	// FROM / JOIN
	var from strings.Builder
	from.WriteString(ds.BaseEntity)
	if ds.BaseAlias != "" {
		from.WriteString(" AS " + ds.BaseAlias)
	}
	for _, j := range ds.Joins {
		from.WriteString(" " + j.Kind.SQL() + " " + j.Table)
		if j.Alias != "" {
			from.WriteString(" AS " + j.Alias)
		}
		from.WriteString(" ON " + j.On)
	}
	q.From = from.String()

	// WHERE, visited in catalog order so output never depends on map iteration
	for id := range def.Filters {
		if _, ok := ds.Filter(id); !ok {
			return nil, fail("unknown filter " + id)
		}
	}
	var rules []condition.Rule
	for _, f := range ds.Filters {
		fv, ok := def.Filters[f.ID]
		if !ok {
			continue
		}
		if !f.Type.Allows(fv.Operator) {
			return nil, fail("operator " + string(fv.Operator) + " not allowed on filter " + f.ID)
		}
		rules = append(rules, condition.Rule{Field: f.Expression, Operator: string(fv.Operator), Value: fv.Value})
	}
	pc := condition.NewCompiler(c.Dialect)
	where, err := pc.Compile(rules)
	if err != nil {
		return nil, fail(err.Error())
	}
	q.Where = where
	q.Args = pc.Args
	if q.Args == nil {
		q.Args = []any{}
	}

	// ORDER BY
	specs := append([]SortSpec(nil), def.Sorting...)
	sort.SliceStable(specs, func(i, j int) bool { return specs[i].Order < specs[j].Order })
	orders := make([]string, 0, len(specs))
	for _, s := range specs {
		col, ok := ds.Column(s.ColumnID)
		if !ok || !col.Sortable {
			return nil, fail("column " + s.ColumnID + " cannot be sorted")
		}
		dir := "ASC"
		switch s.Direction {
		case SortAsc:
		case SortDesc:
			dir = "DESC"
		default:
			return nil, fail("bad sort direction " + string(s.Direction))
		}
		orders = append(orders, col.Expression+" "+dir)
	}
	q.OrderBy = strings.Join(orders, ", ")

	q.SQL = "SELECT " + q.Select + " FROM " + q.From
	q.CountSQL = "SELECT COUNT(*) FROM " + q.From
	if q.Where != "" {
		q.SQL += " WHERE " + q.Where
		q.CountSQL += " WHERE " + q.Where
	}
	if q.OrderBy != "" {
		q.SQL += " ORDER BY " + q.OrderBy
	}
	return q, nil
}
