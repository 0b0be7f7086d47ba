package api

import (
	"go.uber.org/zap"
)

// CallEvent records metadata about a single API call.
type CallEvent struct {
	Method    string
	Path      string
	RequestID string
	Status    int
	LatencyMs int64
	Success   bool
	ErrorKind Kind
}

// Observer receives events about API calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("api")}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	fields := []zap.Field{
		zap.String("method", event.Method),
		zap.String("path", event.Path),
		zap.String("request_id", event.RequestID),
		zap.Int("status", event.Status),
		zap.Int64("latency_ms", event.LatencyMs),
	}
	if event.Success {
		o.log.Debug("api call", fields...)
		return
	}
	o.log.Warn("api call failed", append(fields, zap.Stringer("kind", event.ErrorKind))...)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
