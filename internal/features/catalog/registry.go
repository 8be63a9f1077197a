package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var ErrReportTypeNotFound = errors.New("report type not found")

// NotFoundError names the report type that failed to resolve
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("report type %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrReportTypeNotFound
}

func (e *NotFoundError) StatusCode() int {
	return 404
}

// Catalog resolves report types. It is read-only and safe for concurrent use.
type Catalog interface {
	Get(id string) (*ReportDataSource, error)
	List() []*ReportDataSource
}

// Registry is the keyed, build-once Catalog implementation
type Registry struct {
	sources map[string]*ReportDataSource
	ids     []string
}

// NewRegistry indexes the given sources and checks that each one is self-consistent
func NewRegistry(sources ...ReportDataSource) (*Registry, error) {
	r := &Registry{sources: make(map[string]*ReportDataSource, len(sources))}
	for i := range sources {
		ds := sources[i]
		if err := index(&ds); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", ds.ID, err)
		}
		if _, dup := r.sources[ds.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q registered twice", ds.ID)
		}
		r.sources[ds.ID] = &ds
		r.ids = append(r.ids, ds.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// MustRegistry is NewRegistry for static catalogs; an inconsistent entry is a programmer error
func MustRegistry(sources ...ReportDataSource) *Registry {
	r, err := NewRegistry(sources...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewDefaultCatalog returns the brokerage catalog
func NewDefaultCatalog() Catalog {
	return MustRegistry(builtinSources()...)
}

func (r *Registry) Get(id string) (*ReportDataSource, error) {
	ds, ok := r.sources[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return ds, nil
}

func (r *Registry) List() []*ReportDataSource {
	out := make([]*ReportDataSource, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.sources[id])
	}
	return out
}

func index(ds *ReportDataSource) error {
	if ds.ID == "" || ds.BaseEntity == "" {
		return errors.New("id and base entity are required")
	}

	// Copy slices so the registry never aliases caller-owned memory
	ds.Joins = append([]Join(nil), ds.Joins...)
	ds.Columns = append([]ColumnDef(nil), ds.Columns...)
	ds.Filters = append([]FilterDef(nil), ds.Filters...)

	for _, j := range ds.Joins {
		if j.Table == "" || j.On == "" || !j.Kind.Valid() {
			return fmt.Errorf("invalid join %+v", j)
		}
	}

	// result rows are keyed by label, so labels must be unique too
	labels := make(map[string]string, len(ds.Columns))
	ds.columnIndex = make(map[string]int, len(ds.Columns))
	for i, c := range ds.Columns {
		if c.ID == "" || c.Expression == "" {
			return fmt.Errorf("column %d has no id or expression", i)
		}
		if c.Label == "" {
			return fmt.Errorf("column %q has no label", c.ID)
		}
		if _, dup := ds.columnIndex[c.ID]; dup {
			return fmt.Errorf("duplicate column %q", c.ID)
		}
		if other, dup := labels[c.Label]; dup {
			return fmt.Errorf("columns %q and %q share label %q", other, c.ID, c.Label)
		}
		ds.columnIndex[c.ID] = i
		labels[c.Label] = c.ID
	}

	ds.filterIndex = make(map[string]int, len(ds.Filters))
	for i, f := range ds.Filters {
		if f.ID == "" || f.Expression == "" {
			return fmt.Errorf("filter %d has no id or expression", i)
		}
		if !f.Type.Valid() {
			return fmt.Errorf("filter %q has unknown type %q", f.ID, f.Type)
		}
		if _, dup := ds.filterIndex[f.ID]; dup {
			return fmt.Errorf("duplicate filter %q", f.ID)
		}
		if f.ColumnID != "" {
			col, ok := ds.Column(f.ColumnID)
			if !ok {
				return fmt.Errorf("filter %q references unknown column %q", f.ID, f.ColumnID)
			}
			if !col.Filterable {
				return fmt.Errorf("filter %q references non-filterable column %q", f.ID, f.ColumnID)
			}
		}
		ds.filterIndex[f.ID] = i
	}
	return nil
}
