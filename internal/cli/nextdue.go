package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-broker/internal/features/recurrence"

	"github.com/spf13/cobra"
)

type nextDueOutput struct {
	Frequency recurrence.Frequency `json:"frequency"`
	Anchor    time.Time            `json:"anchor"`
	Due       []time.Time          `json:"due"`
	Warnings  []string             `json:"warnings,omitempty"`
}

func newNextDueCommand(opts *options) *cobra.Command {
	var (
		frequency  string
		expression string
		from       string
		count      int
	)
	cmd := &cobra.Command{
		Use:   "next-due",
		Short: "Preview the due times of a schedule created at --from",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			anchor := time.Now().UTC().Truncate(time.Second)
			if from != "" {
				t, err := time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				anchor = t.UTC()
			}

			freq := recurrence.Frequency(strings.ToLower(strings.TrimSpace(frequency)))
			warnings, err := recurrence.Validate(freq, expression)
			if err != nil {
				return err
			}

			out := nextDueOutput{Frequency: freq, Anchor: anchor, Due: []time.Time{}, Warnings: warnings}
			prev := anchor
			for i := 0; i < count; i++ {
				next, err := recurrence.NextDueAfter(freq, expression, anchor, prev)
				if errors.Is(err, recurrence.ErrNeverFires) {
					break
				}
				if err != nil {
					return err
				}
				out.Due = append(out.Due, next)
				prev = next
			}
			return opts.render(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily | weekly | monthly | quarterly | yearly | custom")
	cmd.Flags().StringVar(&expression, "expression", "", "Five-field cron expression for custom frequency")
	cmd.Flags().StringVar(&from, "from", "", "Creation time in RFC3339 (default now)")
	cmd.Flags().IntVar(&count, "count", 1, "How many due times to print")
	_ = cmd.MarkFlagRequired("frequency")
	return cmd
}
