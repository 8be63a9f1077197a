package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go-broker/internal/features/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const commissionsYAML = `
report_type: commissions
columns:
  - column_id: agent_name
    order: 1
  - column_id: commission_amount
    order: 2
filters:
  period:
    operator: between
    value: ["2024-01-01", "2024-03-31"]
sorting:
  - column_id: commission_amount
    direction: desc
    order: 1
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(catalog.NewDefaultCatalog())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogList(t *testing.T) {
	out, err := run(t, "", "catalog", "-o", "json")
	require.NoError(t, err)

	var types []reportTypeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	ids := make([]string, len(types))
	for i, rt := range types {
		ids[i] = rt.ID
	}
	assert.Contains(t, ids, "commissions")
	assert.Contains(t, ids, "policies")
}

func TestCatalogDescribeYAML(t *testing.T) {
	out, err := run(t, "", "catalog", "commissions")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "commissions", summary["id"])
	assert.NotEmpty(t, summary["filters"])

	_, err = run(t, "", "catalog", "nope")
	assert.Error(t, err)
}

func TestValidateAcceptsDefinition(t *testing.T) {
	out, err := run(t, commissionsYAML, "validate", "-o", "json")
	require.NoError(t, err)

	var got validateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	assert.Empty(t, got.Violations)
}

func TestValidateReportsViolations(t *testing.T) {
	def := `
report_type: commissions
columns:
  - column_id: retired
    order: 1
`
	out, err := run(t, def, "validate", "-o", "json")
	require.Error(t, err)

	var got validateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Valid)
	fields := make([]string, len(got.Violations))
	for i, v := range got.Violations {
		fields[i] = v.Field
	}
	assert.Contains(t, strings.Join(fields, " "), "columns[0]")
	assert.Contains(t, strings.Join(fields, " "), "filters.period")
}

func TestCompileUsesDialect(t *testing.T) {
	out, err := run(t, commissionsYAML, "compile", "--dialect", "mysql", "-o", "json")
	require.NoError(t, err)

	var q struct {
		SQL   string `json:"sql"`
		Where string `json:"where"`
		Args  []any  `json:"args"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, "cm.period_start BETWEEN ? AND ?", q.Where)
	assert.Equal(t, []any{"2024-01-01", "2024-03-31"}, q.Args)
	assert.Contains(t, q.SQL, "ORDER BY cm.amount DESC")

	_, err = run(t, commissionsYAML, "compile", "--dialect", "oracle")
	assert.Error(t, err)
}

func TestCompileRefusesInvalidDefinition(t *testing.T) {
	_, err := run(t, "report_type: commissions\n", "compile")
	assert.ErrorContains(t, err, "invalid report definition")
}

func TestNextDueKeepsMonthEnd(t *testing.T) {
	out, err := run(t, "", "next-due", "--frequency", "Monthly", "--from", "2024-01-31T09:00:00Z", "--count", "3", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Due []string `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"2024-02-29T09:00:00Z", "2024-03-31T09:00:00Z", "2024-04-30T09:00:00Z"}, got.Due)
}

func TestNextDueUnreachableExpression(t *testing.T) {
	out, err := run(t, "", "next-due", "--frequency", "custom", "--expression", "0 0 31 2 *", "-o", "json")
	require.NoError(t, err)

	var got nextDueOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.Due)
	assert.Len(t, got.Warnings, 1)
}

func TestNextDueRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "next-due", "--frequency", "hourly")
	assert.Error(t, err)
	_, err = run(t, "", "next-due", "--frequency", "custom", "--expression", "0 25 * * *")
	assert.Error(t, err)
	_, err = run(t, "", "next-due", "--frequency", "daily", "--count", "0")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "", "catalog", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}
