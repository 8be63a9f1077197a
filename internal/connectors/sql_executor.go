package connectors

import (
	"context"
	"database/sql"
	"fmt"

	"go-broker/internal/database"
)

// SQLExecutor runs report statements on a database/sql pool (postgres or mysql)
type SQLExecutor struct {
	dbType string
	db     *sql.DB
}

// NewSQLExecutor wraps an open pool
func NewSQLExecutor(db *sql.DB, dbType string) *SQLExecutor {
	return &SQLExecutor{dbType: dbType, db: db}
}

// NewReportStorage exposes the report database as a StorageExecutor
func NewReportStorage(rdb *database.ReportDB) StorageExecutor {
	return NewSQLExecutor(rdb.DB, rdb.Driver)
}

// Run executes a query against the report database
func (c *SQLExecutor) Run(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	data, err := c.rowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to process query results: %w", err)
	}
	return data, nil
}

// TestConnection tests if the database connection is valid
func (c *SQLExecutor) TestConnection(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database connection not established")
	}
	return c.db.PingContext(ctx)
}

// GetType returns the connector type
func (c *SQLExecutor) GetType() string {
	return c.dbType
}

// rowsToMaps converts SQL rows to a slice of maps
func (c *SQLExecutor) rowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}

		result = append(result, row)
	}

	// a deadline hit mid-iteration surfaces here, not in Next
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
