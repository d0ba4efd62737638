package observer

import (
	"time"

	"github.com/voocel/recon/planner"
)

// PlannerTrace adapts a Sink into the func(planner.Event) trace callback
// the planner accepts via planner.WithTrace, translating each EventKind
// into a flat field map for logging.
func PlannerTrace(sink Sink) func(planner.Event) {
	if sink == nil {
		sink = NoopSink{}
	}
	return func(ev planner.Event) {
		fields := map[string]any{"depth": ev.Depth}
		if ev.Operations != nil {
			fields["operations"] = len(ev.Operations)
		}
		if ev.Operation != nil {
			fields["op"] = string(ev.Operation.Kind)
			fields["path"] = ev.Operation.Path.String()
		}
		if ev.Instruction != nil {
			fields["instruction"] = ev.Instruction.Description()
		}
		if ev.Kind == planner.EventSuccess {
			fields["start"] = int(ev.Start)
		}
		sink.Emit(Event{
			Source: "planner",
			Kind:   string(ev.Kind),
			Time:   time.Now(),
			Fields: fields,
			Err:    ev.Err,
		})
	}
}
