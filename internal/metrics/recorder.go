// Package metrics exposes observability hooks for the render pipeline, the
// admin editor, the HTTP surface and command handlers.
package metrics

import "time"

// Recorder receives pipeline observations. Implementations may forward to
// Prometheus or drop everything.
type Recorder interface {
	ObserveRender(state string, d time.Duration)
	IncRenderOutcome(state, layout string)
	IncCompileError(component string)
	IncSave(mode, result string)
	ObserveHTTPRequest(route string, status int, d time.Duration)
	ObserveCommand(command, status string, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, time.Duration)           {}
func (NoopRecorder) IncRenderOutcome(string, string)               {}
func (NoopRecorder) IncCompileError(string)                        {}
func (NoopRecorder) IncSave(string, string)                        {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}
func (NoopRecorder) ObserveCommand(string, string, time.Duration)  {}

// OrNoop returns rec, or a NoopRecorder when rec is nil.
func OrNoop(rec Recorder) Recorder {
	if rec == nil {
		return NoopRecorder{}
	}
	return rec
}
