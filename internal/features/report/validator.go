package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-broker/internal/features/catalog"
	"go-broker/pkg/condition"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Validate checks def against the catalog and returns every violation found.
// An empty result means the definition is safe to compile.
func Validate(cat catalog.Catalog, def ReportDefinition) []Violation {
	v := &validator{}
	v.definition(cat, def)
	return v.violations
}

// ValidateNamed additionally requires a report name, as saving does
func ValidateNamed(cat catalog.Catalog, name string, def ReportDefinition) []Violation {
	v := &validator{}
	if strings.TrimSpace(name) == "" {
		v.add("name", "name is required")
	}
	v.definition(cat, def)
	return v.violations
}

// Check wraps the violations of Validate in a *ValidationError, or returns nil
func Check(cat catalog.Catalog, name *string, def ReportDefinition) error {
	var violations []Violation
	if name != nil {
		violations = ValidateNamed(cat, *name, def)
	} else {
		violations = Validate(cat, def)
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

type validator struct {
	violations []Violation
}

func (v *validator) add(field, format string, args ...any) {
	v.violations = append(v.violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) definition(cat catalog.Catalog, def ReportDefinition) {
	if def.ReportType == "" {
		v.add("report_type", "report type is required")
		return
	}
	ds, err := cat.Get(def.ReportType)
	if err != nil {
		// nothing left to check against
		v.add("report_type", "unknown report type %q", def.ReportType)
		return
	}

	v.columns(ds, def.Columns)
	v.filters(ds, def.Filters)
	v.required(ds, def.Filters)
	v.sorting(ds, def.Sorting)
}

func (v *validator) columns(ds *catalog.ReportDataSource, cols []ColumnSelection) {
	if len(cols) == 0 {
		v.add("columns", "at least one column must be selected")
		return
	}

	seen := make(map[string]bool, len(cols))
	orders := make([]int, 0, len(cols))
	for i, sel := range cols {
		field := fmt.Sprintf("columns[%d]", i)
		col, ok := ds.Column(sel.ColumnID)
		switch {
		case !ok:
			v.add(field, "unknown column %q", sel.ColumnID)
		case col.Excluded:
			v.add(field, "column %q cannot be displayed", sel.ColumnID)
		}
		if seen[sel.ColumnID] {
			v.add(field, "column %q selected more than once", sel.ColumnID)
		}
		seen[sel.ColumnID] = true
		orders = append(orders, sel.Order)
	}
	if !dense(orders) {
		v.add("columns", "column orders must run 1..%d without gaps or repeats", len(cols))
	}
}

func (v *validator) filters(ds *catalog.ReportDataSource, filters map[string]FilterValue) {
	ids := make([]string, 0, len(filters))
	for id := range filters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fv := filters[id]
		field := "filters." + id
		def, ok := ds.Filter(id)
		if !ok {
			v.add(field, "unknown filter %q", id)
			continue
		}
		if !def.Type.Allows(fv.Operator) {
			v.add(field, "operator %q is not allowed for %s filter %q", fv.Operator, def.Type, id)
			continue
		}
		if condition.IsEmpty(fv.Value) {
			continue
		}
		v.value(field, def, fv)
	}
}

func (v *validator) value(field string, def *catalog.FilterDef, fv FilterValue) {
	switch fv.Operator {
	case catalog.OpBetween:
		bounds, ok := condition.ToSlice(fv.Value)
		if !ok || len(bounds) != 2 || condition.IsEmpty(bounds[0]) || condition.IsEmpty(bounds[1]) {
			v.add(field, "between needs exactly two bounds")
			return
		}
		for _, b := range bounds {
			v.scalar(field, def, b)
		}
	case catalog.OpIn, catalog.OpNotIn:
		items, ok := condition.ToSlice(fv.Value)
		if !ok {
			v.add(field, "%s needs a list of values", fv.Operator)
			return
		}
		for _, item := range items {
			s := fmt.Sprint(item)
			if !def.HasOption(s) {
				v.add(field, "%q is not an option of filter %q", s, def.ID)
			}
		}
	default:
		if _, isList := condition.ToSlice(fv.Value); isList {
			v.add(field, "%s needs a single value", fv.Operator)
			return
		}
		v.scalar(field, def, fv.Value)
	}
}

func (v *validator) scalar(field string, def *catalog.FilterDef, val any) {
	switch def.Type {
	case catalog.FilterNumber:
		if !isNumber(val) {
			v.add(field, "%v is not a number", val)
		}
	case catalog.FilterDate, catalog.FilterDateRange:
		if !isDate(val) {
			v.add(field, "%v is not a date (YYYY-MM-DD)", val)
		}
	case catalog.FilterBoolean:
		if _, ok := val.(bool); !ok {
			v.add(field, "%v is not a boolean", val)
		}
	case catalog.FilterText:
		if _, ok := val.(string); !ok {
			v.add(field, "%v is not text", val)
		}
	}
}

func (v *validator) required(ds *catalog.ReportDataSource, filters map[string]FilterValue) {
	for _, f := range ds.Filters {
		if !f.Required {
			continue
		}
		fv, ok := filters[f.ID]
		if !ok || condition.IsEmpty(fv.Value) {
			v.add("filters."+f.ID, "filter %q is required", f.ID)
		}
	}
}

func (v *validator) sorting(ds *catalog.ReportDataSource, specs []SortSpec) {
	if len(specs) == 0 {
		return
	}
	seen := make(map[string]bool, len(specs))
	orders := make([]int, 0, len(specs))
	for i, s := range specs {
		field := fmt.Sprintf("sorting[%d]", i)
		col, ok := ds.Column(s.ColumnID)
		switch {
		case !ok:
			v.add(field, "unknown sort column %q", s.ColumnID)
		case !col.Sortable:
			v.add(field, "column %q is not sortable", s.ColumnID)
		}
		if s.Direction != SortAsc && s.Direction != SortDesc {
			v.add(field, "direction must be asc or desc, got %q", s.Direction)
		}
		if seen[s.ColumnID] {
			v.add(field, "column %q sorted more than once", s.ColumnID)
		}
		seen[s.ColumnID] = true
		orders = append(orders, s.Order)
	}
	if !dense(orders) {
		v.add("sorting", "sort orders must run 1..%d without gaps or repeats", len(specs))
	}
}

// dense reports whether orders is a permutation of 1..len(orders)
func dense(orders []int) bool {
	sorted := append([]int(nil), orders...)
	sort.Ints(sorted)
	for i, o := range sorted {
		if o != i+1 {
			return false
		}
	}
	return true
}

func isNumber(val any) bool {
	switch n := val.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	}
	return false
}

func isDate(val any) bool {
	switch d := val.(type) {
	case time.Time:
		return true
	case string:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, d); err == nil {
				return true
			}
		}
	}
	return false
}
