package connectors

import (
	"context"
)

// StorageExecutor runs a compiled report statement and returns its rows keyed by
// output column name.
type StorageExecutor interface {
	// Run executes query with positional args
	Run(ctx context.Context, query string, args []any) ([]map[string]any, error)

	// TestConnection tests if the storage is reachable
	TestConnection(ctx context.Context) error

	// GetType returns the driver name
	GetType() string
}
