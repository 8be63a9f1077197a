package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-broker/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ReportDB is the relational store compiled report queries execute against.
type ReportDB struct {
	DB     *sql.DB
	Driver string
}

// NewReportDB opens the report store. The driver name doubles as the SQL dialect.
func NewReportDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*ReportDB, error) {
	switch cfg.ReportDBDriver {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported report db driver: %s", cfg.ReportDBDriver)
	}

	db, err := sql.Open(cfg.ReportDBDriver, cfg.ReportDBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Unreachable storage is not fatal: runs fail with an ExecutionError until it recovers.
			if err := db.PingContext(ctx); err != nil {
				log.Warn("report database not reachable at startup", zap.String("driver", cfg.ReportDBDriver), zap.Error(err))
				return nil
			}
			log.Info("connected to report database", zap.String("driver", cfg.ReportDBDriver))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return &ReportDB{DB: db, Driver: cfg.ReportDBDriver}, nil
}
