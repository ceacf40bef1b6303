package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldServer     = "server"
	FieldTransport  = "transport"
	FieldTool       = "tool"
	FieldDurationMs = "duration_ms"
)

const (
	EventConnectAttempt    = "connect_attempt"
	EventConnectSuccess    = "connect_success"
	EventConnectFailure    = "connect_failure"
	EventDisconnect        = "disconnect"
	EventDisconnectFailure = "disconnect_failure"
	EventBatchAbort        = "batch_abort"
	EventFanoutSkip        = "fanout_skip"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ServerField(server string) zap.Field {
	return zap.String(FieldServer, server)
}

func TransportField(transport string) zap.Field {
	return zap.String(FieldTransport, transport)
}

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}
