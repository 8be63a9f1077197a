package report

import (
	"errors"
	"testing"

	"go-broker/internal/features/catalog"
	"go-broker/pkg/condition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bareSource() *catalog.ReportDataSource {
	return &catalog.ReportDataSource{
		ID:         "policies",
		Name:       "Policies",
		BaseEntity: "policies",
		Columns: []catalog.ColumnDef{
			{ID: "policy_number", Expression: "policy_number", Label: "Policy #", Type: catalog.ColumnText, Sortable: true},
			{ID: "premium", Expression: "premium", Label: "Premium", Type: catalog.ColumnCurrency, Sortable: true},
		},
	}
}

func defaultSource(t *testing.T, id string) *catalog.ReportDataSource {
	t.Helper()
	ds, err := catalog.NewDefaultCatalog().Get(id)
	require.NoError(t, err)
	return ds
}

func TestCompileProjectionAndOrder(t *testing.T) {
	def := ReportDefinition{
		ReportType: "policies",
		Columns: []ColumnSelection{
			{ColumnID: "policy_number", Order: 1},
			{ColumnID: "premium", Order: 2},
		},
		Sorting: []SortSpec{{ColumnID: "premium", Direction: SortDesc, Order: 1}},
	}

	q, err := Compile(bareSource(), def)
	require.NoError(t, err)
	assert.Equal(t, `policy_number AS "Policy #", premium AS "Premium"`, q.Select)
	assert.Equal(t, "premium DESC", q.OrderBy)
	assert.Empty(t, q.Where)
	assert.Equal(t, `SELECT policy_number AS "Policy #", premium AS "Premium" FROM policies ORDER BY premium DESC`, q.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM policies", q.CountSQL)
	require.Len(t, q.Columns, 2)
	assert.Equal(t, "Policy #", q.Columns[0].Label)
}

func TestCompileSkipsEmptyInFilter(t *testing.T) {
	ds := defaultSource(t, "claims")
	def := ReportDefinition{
		ReportType: "claims",
		Columns:    []ColumnSelection{{ColumnID: "claim_number", Order: 1}},
		Filters: map[string]FilterValue{
			"status": {Operator: catalog.OpIn, Value: []any{}},
		},
	}

	q, err := Compile(ds, def)
	require.NoError(t, err)
	assert.Empty(t, q.Where)
	assert.NotContains(t, q.SQL, "cl.status")
	assert.Empty(t, q.Args)
}

func TestCompileFullPolicyQuery(t *testing.T) {
	ds := defaultSource(t, "policies")
	def := ReportDefinition{
		ReportType: "policies",
		Columns: []ColumnSelection{
			{ColumnID: "premium", Order: 2},
			{ColumnID: "client_name", Order: 1},
		},
		Filters: map[string]FilterValue{
			"premium":        {Operator: catalog.OpGreaterThan, Value: 500.0},
			"status":         {Operator: catalog.OpIn, Value: []any{"active", "pending"}},
			"client_name":    {Operator: catalog.OpContains, Value: "smith_"},
			"effective_date": {Operator: catalog.OpBetween, Value: []any{"2024-01-01", "2024-06-30"}},
		},
		Sorting: []SortSpec{
			{ColumnID: "client_name", Direction: SortAsc, Order: 2},
			{ColumnID: "premium", Direction: SortDesc, Order: 1},
		},
	}

	q, err := Compile(ds, def)
	require.NoError(t, err)

	assert.Equal(t, `c.name AS "Client", p.premium AS "Premium"`, q.Select)
	assert.Equal(t, "policies AS p LEFT JOIN clients AS c ON c.id = p.client_id LEFT JOIN agents AS a ON a.id = p.agent_id LEFT JOIN carriers AS cr ON cr.id = p.carrier_id", q.From)
	// catalog filter order: status, line_of_business, effective_date, expiration_date, premium, client_name
	assert.Equal(t, "p.status IN ($1, $2) AND p.effective_date BETWEEN $3 AND $4 AND p.premium > $5 AND c.name ILIKE $6", q.Where)
	assert.Equal(t, []any{"active", "pending", "2024-01-01", "2024-06-30", 500.0, `%smith\_%`}, q.Args)
	assert.Equal(t, "p.premium DESC, c.name ASC", q.OrderBy)
}

func TestCompileIsDeterministic(t *testing.T) {
	ds := defaultSource(t, "invoices")
	def := ReportDefinition{
		ReportType: "invoices",
		Columns:    []ColumnSelection{{ColumnID: "invoice_number", Order: 1}, {ColumnID: "amount_due", Order: 2}},
		Filters: map[string]FilterValue{
			"status":      {Operator: catalog.OpNotIn, Value: []any{"void"}},
			"amount_due":  {Operator: catalog.OpBetween, Value: []any{10, 20}},
			"client_name": {Operator: catalog.OpStartsWith, Value: "A"},
			"due_date":    {Operator: catalog.OpEquals, Value: "2024-03-01"},
		},
	}

	first, err := Compile(ds, def)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Compile(ds, def)
		require.NoError(t, err)
		assert.Equal(t, first.SQL, again.SQL)
		assert.Equal(t, first.Args, again.Args)
	}
}

func TestCompileMySQLDialect(t *testing.T) {
	ds := defaultSource(t, "agents")
	def := ReportDefinition{
		ReportType: "agents",
		Columns:    []ColumnSelection{{ColumnID: "full_name", Order: 1}},
		Filters: map[string]FilterValue{
			"license_state": {Operator: catalog.OpEquals, Value: "TX"},
			"active":        {Operator: catalog.OpEquals, Value: true},
		},
	}

	q, err := NewCompiler(condition.MySQL).Compile(ds, def)
	require.NoError(t, err)
	assert.Equal(t, "a.full_name AS `Agent`", q.Select)
	assert.Equal(t, "a.active = ? AND a.license_state = ?", q.Where)
	assert.Equal(t, []any{true, "TX"}, q.Args)
}

func TestCompileRejectsInvalidDefinitions(t *testing.T) {
	ds := defaultSource(t, "policies")
	tests := []struct {
		name string
		def  ReportDefinition
	}{
		{"no columns", ReportDefinition{ReportType: "policies"}},
		{"unknown column", ReportDefinition{Columns: []ColumnSelection{{ColumnID: "zzz", Order: 1}}}},
		{"excluded column", ReportDefinition{Columns: []ColumnSelection{{ColumnID: "carrier_id", Order: 1}}}},
		{"unknown filter", ReportDefinition{
			Columns: []ColumnSelection{{ColumnID: "premium", Order: 1}},
			Filters: map[string]FilterValue{"zzz": {Operator: catalog.OpEquals, Value: 1}},
		}},
		{"illegal operator", ReportDefinition{
			Columns: []ColumnSelection{{ColumnID: "premium", Order: 1}},
			Filters: map[string]FilterValue{"status": {Operator: catalog.OpContains, Value: "x"}},
		}},
		{"unsortable column", ReportDefinition{
			Columns: []ColumnSelection{{ColumnID: "premium", Order: 1}},
			Sorting: []SortSpec{{ColumnID: "is_renewal", Direction: SortAsc, Order: 1}},
		}},
		{"other report type", ReportDefinition{ReportType: "claims", Columns: []ColumnSelection{{ColumnID: "premium", Order: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(ds, tt.def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCompile))
			var ce *CompileError
			assert.True(t, errors.As(err, &ce))
		})
	}
}
