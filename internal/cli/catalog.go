package cli

import (
	"go-broker/internal/features/catalog"

	"github.com/spf13/cobra"
)

type columnSummary struct {
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	Type       catalog.ColumnType `json:"type"`
	Default    bool               `json:"default_visible,omitempty"`
	Sortable   bool               `json:"sortable,omitempty"`
	Filterable bool               `json:"filterable,omitempty"`
}

type filterSummary struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Type      catalog.FilterType `json:"type"`
	Required  bool               `json:"required,omitempty"`
	Operators []catalog.Operator `json:"operators"`
}

type reportTypeSummary struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Entity  string          `json:"base_entity"`
	Columns []columnSummary `json:"columns,omitempty"`
	Filters []filterSummary `json:"filters,omitempty"`
}

func newCatalogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [report-type]",
		Short: "List report types, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				var out []reportTypeSummary
				for _, ds := range opts.catalog.List() {
					out = append(out, reportTypeSummary{ID: ds.ID, Name: ds.Name, Entity: ds.BaseEntity})
				}
				return opts.render(cmd.OutOrStdout(), out)
			}

			ds, err := opts.catalog.Get(args[0])
			if err != nil {
				return err
			}
			summary := reportTypeSummary{ID: ds.ID, Name: ds.Name, Entity: ds.BaseEntity}
			for _, c := range ds.Columns {
				summary.Columns = append(summary.Columns, columnSummary{
					ID: c.ID, Label: c.Label, Type: c.Type,
					Default: c.DefaultVisible, Sortable: c.Sortable, Filterable: c.Filterable,
				})
			}
			for _, f := range ds.Filters {
				summary.Filters = append(summary.Filters, filterSummary{
					ID: f.ID, Label: f.Label, Type: f.Type, Required: f.Required, Operators: f.Type.Operators(),
				})
			}
			return opts.render(cmd.OutOrStdout(), summary)
		},
	}
}
