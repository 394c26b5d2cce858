package orchestrator

import (
	"context"
	"time"

	"resume-matcher/internal/shared/telemetry"
)

// State is a step of an upload or analyze flow. Flow state is never persisted.
type State string

const (
	StateReceived   State = "received"
	StateLookup     State = "lookup"
	StateExtracting State = "extracting"
	StateValidating State = "validating"
	StateArchiving  State = "archiving"
	StateScoring    State = "scoring"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// flow logs each state transition of a single request.
type flow struct {
	ctx     context.Context
	event   string
	state   State
	started time.Time
	now     func() time.Time
	fields  map[string]any
}

func startFlow(ctx context.Context, now func() time.Time, event string, initial State, fields map[string]any) *flow {
	f := &flow{
		ctx:     ctx,
		event:   event,
		state:   initial,
		started: now(),
		now:     now,
		fields:  fields,
	}
	telemetry.Debug(event, f.entry(initial, "->"+string(initial)))
	return f
}

func (f *flow) to(next State) {
	transition := string(f.state) + "->" + string(next)
	f.state = next
	telemetry.Debug(f.event, f.entry(next, transition))
}

func (f *flow) done(extra map[string]any) {
	transition := string(f.state) + "->" + string(StateDone)
	f.state = StateDone
	entry := f.entry(StateDone, transition)
	for k, v := range extra {
		entry[k] = v
	}
	telemetry.Info(f.event, entry)
}

// fail records the transition to StateFailed and returns err unchanged.
func (f *flow) fail(err error) error {
	transition := string(f.state) + "->" + string(StateFailed)
	entry := f.entry(StateFailed, transition)
	entry["failed_in"] = string(f.state)
	entry["error"] = err
	f.state = StateFailed
	telemetry.Warn(f.event, entry)
	return err
}

func (f *flow) elapsedMs() float64 {
	return float64(f.now().Sub(f.started).Microseconds()) / 1000.0
}

func (f *flow) entry(status State, transition string) map[string]any {
	entry := make(map[string]any, len(f.fields)+4)
	for k, v := range f.fields {
		entry[k] = v
	}
	entry["request_id"] = telemetry.RequestIDFromContext(f.ctx)
	entry["status"] = string(status)
	entry["status_transition"] = transition
	entry["duration_ms"] = f.elapsedMs()
	return entry
}

func (f *flow) set(key string, value any) {
	f.fields[key] = value
}
