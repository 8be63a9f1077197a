package cli

import (
	"go-broker/internal/features/report"
	"go-broker/pkg/condition"

	"github.com/spf13/cobra"
)

func newCompileCommand(opts *options) *cobra.Command {
	var file, dialect string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the parameterized SQL a definition compiles to",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := condition.ParseDialect(dialect)
			if err != nil {
				return err
			}
			def, err := readDefinition(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := report.Check(opts.catalog, nil, def); err != nil {
				return err
			}
			ds, err := opts.catalog.Get(def.ReportType)
			if err != nil {
				return err
			}
			q, err := report.NewCompiler(d).Compile(ds, def)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Definition file (YAML or JSON), - for stdin")
	cmd.Flags().StringVar(&dialect, "dialect", "postgres", "SQL dialect: postgres | mysql")
	return cmd
}
