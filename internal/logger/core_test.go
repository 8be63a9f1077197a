package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type captureSink struct {
	entries []LogEntry
}

func (s *captureSink) AddLog(entry LogEntry) {
	s.entries = append(s.entries, entry)
}

func TestDBCoreForwardsWarningsWithContext(t *testing.T) {
	base, observed := observer.New(zapcore.DebugLevel)
	sink := &captureSink{}
	log := zap.New(NewDBCore(base, sink)).With(zap.String("tenant_id", "t-1"))

	log.Info("sweep finished")
	log.Error("scheduled run failed", zap.String("schedule_id", "s-9"))

	assert.Equal(t, 2, observed.Len(), "console core still receives every entry")
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "scheduled run failed", sink.entries[0].Message)
	assert.Equal(t, "t-1", sink.entries[0].TenantID)
	assert.Equal(t, "s-9", sink.entries[0].ScheduleID)
	assert.Equal(t, zapcore.ErrorLevel, sink.entries[0].Level)
}

func TestMapLevelToInt(t *testing.T) {
	assert.Equal(t, 10, mapLevelToInt(zapcore.DebugLevel))
	assert.Equal(t, 30, mapLevelToInt(zapcore.WarnLevel))
	assert.Equal(t, 50, mapLevelToInt(zapcore.FatalLevel))
	assert.Equal(t, 20, mapLevelToInt(zapcore.DPanicLevel))
}
