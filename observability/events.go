package observability

import (
	"log/slog"

	"synthd/core/events"
)

// EventRecorder bridges engine events into the structured log stream and the
// Prometheus registry. It implements events.Emitter.
type EventRecorder struct {
	logger     *slog.Logger
	metrics    *engineMetrics
	debtTicker string
}

// NewEventRecorder wires a recorder to the supplied logger. Debt events carry
// no asset attribute; debtTicker labels their counters. A nil logger falls
// back to the process default.
func NewEventRecorder(logger *slog.Logger, debtTicker string) *EventRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRecorder{logger: logger, metrics: EngineMetrics(), debtTicker: debtTicker}
}

// Emit logs the event with its attributes and updates the matching counters.
func (r *EventRecorder) Emit(evt events.Event) {
	if r == nil || evt == nil {
		return
	}
	attrs := evt.Attributes()
	logArgs := make([]any, 0, len(attrs)*2)
	for key, value := range attrs {
		logArgs = append(logArgs, slog.String(key, value))
	}
	r.logger.Info(evt.EventType(), logArgs...)

	asset := attrs["asset"]
	if asset == "" {
		asset = r.debtTicker
	}
	r.metrics.RecordOperation(evt.EventType(), asset)
	if evt.EventType() == events.TypeLiquidation {
		r.metrics.RecordLiquidation()
	}
}
