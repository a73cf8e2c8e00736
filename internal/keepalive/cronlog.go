package keepalive

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's internal messages to slog. Scheduler chatter
// (schedule, wake, run) is debug-level.
type cronLogger struct {
	logger *slog.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
