package cli

import (
	"fmt"

	"go-broker/internal/features/report"

	"github.com/spf13/cobra"
)

type validateOutput struct {
	Valid      bool               `json:"valid"`
	Violations []report.Violation `json:"violations"`
}

func newValidateCommand(opts *options) *cobra.Command {
	var file, name string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a report definition against the catalog",
		Long: `Check a report definition and print every violation found.
Exits non-zero when the definition is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := readDefinition(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var violations []report.Violation
			if cmd.Flags().Changed("name") {
				violations = report.ValidateNamed(opts.catalog, name, def)
			} else {
				violations = report.Validate(opts.catalog, def)
			}
			if violations == nil {
				violations = []report.Violation{}
			}

			if err := opts.render(cmd.OutOrStdout(), validateOutput{Valid: len(violations) == 0, Violations: violations}); err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("definition has %d violation(s)", len(violations))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Definition file (YAML or JSON), - for stdin")
	cmd.Flags().StringVar(&name, "name", "", "Also check the report name a save would use")
	return cmd
}
