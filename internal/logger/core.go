package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a zap core that forwards warnings and errors to the async DB writer
type DBCore struct {
	zapcore.Core
	writer LogSink
	fields []zapcore.Field
}

// LogSink receives log entries copied out of the zap pipeline
type LogSink interface {
	AddLog(entry LogEntry)
}

// NewDBCore wraps an existing core (console) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer LogSink) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps contextual fields so tenant/schedule ids survive logger.With(...)
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= zapcore.WarnLevel {
		var tenantID, scheduleID string
		all := append(append([]zapcore.Field{}, c.fields...), fields...)
		for _, f := range all {
			switch f.Key {
			case "tenant_id":
				tenantID = f.String
			case "schedule_id":
				scheduleID = f.String
			}
		}

		c.writer.AddLog(LogEntry{
			Level:      entry.Level,
			Message:    entry.Message,
			TenantID:   tenantID,
			ScheduleID: scheduleID,
			Caller:     entry.Caller.Function,
		})
	}

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
