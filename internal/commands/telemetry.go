package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus classifies an execution outcome.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to Telemetry after every execution. Error is the
// wrapped error Execute returns.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry observes finished executions.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry writes one completion entry per execution.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		elapsed := info.Duration.Milliseconds()
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command.completed", "duration_ms", elapsed)
			return
		}
		entry.Error("command."+string(info.Status), "duration_ms", elapsed, "error", info.Error)
	}
}

// RecordedTelemetry observes every execution in rec before calling next.
func RecordedTelemetry[T command.Message](rec metrics.Recorder, next Telemetry[T]) Telemetry[T] {
	rec = metrics.OrNoop(rec)
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		rec.ObserveCommand(info.Command, string(info.Status), info.Duration)
		if next != nil {
			next(ctx, msg, info)
		}
	}
}
