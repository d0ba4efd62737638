package planner

import (
	"github.com/voocel/recon/dag"
	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/task"
)

// EventKind tags a structured trace event emitted during a search. A trace
// consumer may render these to a log or a diagram; the planner itself is
// indifferent to the sink.
type EventKind string

const (
	EventStart           EventKind = "start"
	EventFindNext        EventKind = "find-next"
	EventTryInstruction  EventKind = "try-instruction"
	EventBacktrackMethod EventKind = "backtrack-method"
	EventFound           EventKind = "found"
	EventSuccess         EventKind = "success"
	EventFailed          EventKind = "failed"
	EventError           EventKind = "error"
)

// Event is one structured point in a planner run.
type Event struct {
	Kind        EventKind
	Depth       int
	State       any
	Operations  []diff.Operation
	Instruction *task.Instruction
	Operation   *diff.Operation
	Start       dag.ID
	Err         error
}
