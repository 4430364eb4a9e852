package internal

import (
	"context"
	"strconv"
	"sync"
)

// Telemetry hook layer for decisions and snapshot loads. By default the
// emitter is a no-op; service wiring or tests may register their own via
// RegisterTelemetryEmitter.

type TelemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

var (
	teleMu   sync.Mutex
	teleImpl TelemetryEmitter = func(ctx context.Context, name string, labels map[string]string, value any) {
		// noop by default
	}
)

// RegisterTelemetryEmitter registers a custom emitter function. Passing nil restores the no-op.
func RegisterTelemetryEmitter(fn TelemetryEmitter) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = func(ctx context.Context, name string, labels map[string]string, value any) {}
		return
	}
	teleImpl = fn
}

func currentEmitter() TelemetryEmitter {
	teleMu.Lock()
	defer teleMu.Unlock()
	return teleImpl
}

// EmitDecision counts one resolver decision.
// name: "nilability_decision_total" with labels {"kind": "attribute"|"relationship", "rule": "<rule>", "result": "true"|"false"}
func EmitDecision(ctx context.Context, kind, rule string, result bool) {
	labels := map[string]string{"kind": kind, "rule": rule, "result": strconv.FormatBool(result)}
	currentEmitter()(ctx, "nilability_decision_total", labels, 1)
}

// EmitSnapshotLoad records how many records a snapshot load produced.
// name: "nilability_snapshot_records" with label {"source": "<describe>"}
func EmitSnapshotLoad(ctx context.Context, source string, records int) {
	labels := map[string]string{"source": source}
	currentEmitter()(ctx, "nilability_snapshot_records", labels, records)
}
