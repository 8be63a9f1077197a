// Package cli implements reportctl, the offline companion of the reporting API.
// It validates and compiles report definitions and previews schedules without a server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go-broker/internal/features/catalog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is stamped at build time
var Version = "dev"

type options struct {
	output  string
	catalog catalog.Catalog
}

// NewRootCommand builds the reportctl command tree against the built-in catalog
func NewRootCommand() *cobra.Command {
	return newRootCommand(catalog.NewDefaultCatalog())
}

func newRootCommand(cat catalog.Catalog) *cobra.Command {
	opts := &options{catalog: cat}

	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Inspect report types, check definitions and preview schedules",
		Long: `reportctl works on report definitions stored as YAML or JSON files.

Examples:
  reportctl catalog                          # List report types
  reportctl catalog commissions              # Columns and filters of one type
  reportctl validate -f q1-commissions.yaml  # Check a definition
  reportctl compile -f q1-commissions.yaml --dialect mysql
  reportctl next-due --frequency monthly --from 2024-01-31T09:00:00Z --count 3`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "Output format: yaml | json")

	root.AddCommand(
		newCatalogCommand(opts),
		newValidateCommand(opts),
		newCompileCommand(opts),
		newNextDueCommand(opts),
	)
	return root
}

// Execute runs reportctl and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// render writes v using the json tags of its types for both formats
func (o *options) render(w io.Writer, v any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}
	return fmt.Errorf("unknown output format %q (want yaml or json)", o.output)
}
