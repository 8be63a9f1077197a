package logger

import (
	"go-broker/internal/config"
	"go-broker/internal/database"

	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees it into the MongoDB log writer
func NewLogger(cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller function name is persisted with every DB log line
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)

	finalCore := NewDBCore(baseLogger.Core(), dbWriter)

	logger := zap.New(finalCore, zap.AddCaller())
	zap.ReplaceGlobals(logger)
	return logger, nil
}
