package execution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-broker/internal/config"
	"go-broker/internal/connectors"
	"go-broker/internal/features/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrExecution = errors.New("report execution failed")

// ExecutionError wraps a storage failure. Timeout is set when the caller's deadline fired.
type ExecutionError struct {
	ReportType string
	Stage      string
	Timeout    bool
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("report %s timed out during %s: %v", e.ReportType, e.Stage, e.Err)
	}
	return fmt.Sprintf("report %s failed during %s: %v", e.ReportType, e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() []error { return []error{ErrExecution, e.Err} }

func (e *ExecutionError) StatusCode() int {
	if e.Timeout {
		return 504
	}
	return 502
}

type Engine interface {
	Execute(ctx context.Context, q *CompiledQuery, format Format, limit, offset int) (*ExecutionResult, error)
	ExecuteWithTimeout(ctx context.Context, q *CompiledQuery, format Format, limit, offset int, timeout time.Duration) (*ExecutionResult, error)
}

type EngineImpl struct {
	Storage        connectors.StorageExecutor
	MaxRows        int
	DefaultTimeout time.Duration
	Logger         *zap.Logger
	now            func() time.Time
}

func NewEngine(storage connectors.StorageExecutor, cfg *config.Config, logger *zap.Logger) Engine {
	return &EngineImpl{
		Storage:        storage,
		MaxRows:        cfg.MaxResultRows,
		DefaultTimeout: cfg.ExecutionTimeout,
		Logger:         logger,
		now:            time.Now,
	}
}

// ExecuteWithTimeout bounds Execute by timeout; zero or negative means the configured default
func (e *EngineImpl) ExecuteWithTimeout(ctx context.Context, q *CompiledQuery, format Format, limit, offset int, timeout time.Duration) (*ExecutionResult, error) {
	if timeout <= 0 {
		timeout = e.DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.Execute(ctx, q, format, limit, offset)
}

// Execute counts the full match set, then fetches one page of it. No retries.
func (e *EngineImpl) Execute(ctx context.Context, q *CompiledQuery, format Format, limit, offset int) (*ExecutionResult, error) {
	if q == nil {
		return nil, errors.New("nil compiled query")
	}
	if format == "" {
		format = FormatTable
	}
	limit, offset = e.page(limit, offset)

	start := e.clock()
	result := &ExecutionResult{
		ExecutionID: uuid.NewString(),
		ReportType:  q.ReportType,
		Columns:     q.Columns,
		Format:      format,
		Limit:       limit,
		Offset:      offset,
	}

	countRows, err := e.Storage.Run(ctx, q.CountSQL, q.Args)
	if err != nil {
		return nil, e.fail(ctx, q, "count", err)
	}
	total, err := firstInt(countRows)
	if err != nil {
		return nil, e.fail(ctx, q, "count", err)
	}
	result.TotalCount = total

	pageSQL := q.SQL + " LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
	rows, err := e.Storage.Run(ctx, pageSQL, q.Args)
	if err != nil {
		return nil, e.fail(ctx, q, "fetch", err)
	}
	result.Rows = normalise(q.Columns, rows)

	result.GeneratedAt = e.clock()
	result.ExecutionTime = result.GeneratedAt.Sub(start)

	e.Logger.Debug("report executed",
		zap.String("execution_id", result.ExecutionID),
		zap.String("report_type", q.ReportType),
		zap.Int64("total_count", result.TotalCount),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", result.ExecutionTime),
	)
	return result, nil
}

func (e *EngineImpl) page(limit, offset int) (int, int) {
	maxRows := e.MaxRows
	if maxRows <= 0 {
		maxRows = 10000
	}
	if limit <= 0 || limit > maxRows {
		limit = maxRows
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (e *EngineImpl) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

func (e *EngineImpl) fail(ctx context.Context, q *CompiledQuery, stage string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	e.Logger.Warn("report execution failed",
		zap.String("report_type", q.ReportType),
		zap.String("stage", stage),
		zap.Bool("timeout", timeout),
		zap.Error(err),
	)
	return &ExecutionError{ReportType: q.ReportType, Stage: stage, Timeout: timeout, Err: err}
}

func firstInt(rows []map[string]any) (int64, error) {
	if len(rows) == 0 {
		return 0, errors.New("count query returned no rows")
	}
	for _, v := range rows[0] {
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case float64:
			return int64(n), nil
		case string:
			return strconv.ParseInt(n, 10, 64)
		}
		return 0, fmt.Errorf("unexpected count value %T", v)
	}
	return 0, errors.New("count query returned no columns")
}

// normalise keeps only projected labels and gives currency values exact decimal form
func normalise(cols []Column, rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, raw := range rows {
		row := make(map[string]any, len(cols))
		for _, c := range cols {
			v := raw[c.Label]
			if c.Type == catalog.ColumnCurrency {
				v = toDecimal(v)
			}
			row[c.Label] = v
		}
		out = append(out, row)
	}
	return out
}

func toDecimal(v any) any {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	}
	return v
}
