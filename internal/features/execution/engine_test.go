package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-broker/internal/connectors"
	"go-broker/internal/features/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func policyQuery() *CompiledQuery {
	return &CompiledQuery{
		ReportType: "policies",
		SQL:        `SELECT p.policy_number AS "Policy #", p.premium AS "Premium" FROM policies AS p WHERE p.status = $1 ORDER BY p.premium DESC`,
		CountSQL:   `SELECT COUNT(*) FROM policies AS p WHERE p.status = $1`,
		Args:       []any{"active"},
		Columns: []Column{
			{ID: "policy_number", Label: "Policy #", Type: catalog.ColumnText},
			{ID: "premium", Label: "Premium", Type: catalog.ColumnCurrency},
		},
	}
}

func newMockEngine(t *testing.T, maxRows int) (*EngineImpl, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &EngineImpl{
		Storage: connectors.NewSQLExecutor(db, "postgres"),
		MaxRows: maxRows,
		Logger:  zap.NewNop(),
	}, mock
}

func TestExecutePaginatesAndCounts(t *testing.T) {
	engine, mock := newMockEngine(t, 100)
	q := policyQuery()

	mock.ExpectQuery(q.CountSQL).WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
	mock.ExpectQuery(q.SQL+" LIMIT 2 OFFSET 10").WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"Policy #", "Premium"}).
			AddRow("POL-9", "1200.50").
			AddRow("POL-3", 99.99))

	res, err := engine.Execute(context.Background(), q, FormatTable, 2, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 42, res.TotalCount)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 10, res.Offset)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "POL-9", res.Rows[0]["Policy #"])
	assert.True(t, decimal.RequireFromString("1200.50").Equal(res.Rows[0]["Premium"].(decimal.Decimal)))
	assert.True(t, decimal.RequireFromString("99.99").Equal(res.Rows[1]["Premium"].(decimal.Decimal)))
	assert.NotEmpty(t, res.ExecutionID)
	assert.False(t, res.GeneratedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteClampsLimit(t *testing.T) {
	engine, mock := newMockEngine(t, 5)
	q := policyQuery()

	mock.ExpectQuery(q.CountSQL).WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(q.SQL+" LIMIT 5 OFFSET 0").WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"Policy #", "Premium"}))

	res, err := engine.Execute(context.Background(), q, "", 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 0, res.Offset)
	assert.Equal(t, FormatTable, res.Format)
	assert.Empty(t, res.Rows)
}

func TestExecuteWrapsStorageFailure(t *testing.T) {
	engine, mock := newMockEngine(t, 10)
	q := policyQuery()
	boom := errors.New("connection reset")
	mock.ExpectQuery(q.CountSQL).WillReturnError(boom)

	_, err := engine.Execute(context.Background(), q, FormatCSV, 10, 0)
	require.Error(t, err)

	var ee *ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.False(t, ee.Timeout)
	assert.Equal(t, "count", ee.Stage)
	assert.Equal(t, 502, ee.StatusCode())
	assert.ErrorIs(t, err, ErrExecution)
	assert.ErrorIs(t, err, boom)
}

type slowStorage struct{}

func (slowStorage) Run(ctx context.Context, _ string, _ []any) ([]map[string]any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowStorage) TestConnection(context.Context) error { return nil }
func (slowStorage) GetType() string                      { return "slow" }

func TestExecuteWithTimeoutReportsTimeout(t *testing.T) {
	engine := &EngineImpl{Storage: slowStorage{}, MaxRows: 10, Logger: zap.NewNop()}

	_, err := engine.ExecuteWithTimeout(context.Background(), policyQuery(), FormatTable, 10, 0, 20*time.Millisecond)
	require.Error(t, err)

	var ee *ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.True(t, ee.Timeout)
	assert.Equal(t, 504, ee.StatusCode())
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatTable, f)

	f, ok = ParseFormat("excel")
	assert.True(t, ok)
	assert.Equal(t, FormatExcel, f)

	_, ok = ParseFormat("docx")
	assert.False(t, ok)
}
