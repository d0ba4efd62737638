// Package planner implements the hierarchical task search: given a current
// state and a target patch, it searches a task.Registry depth-first for a
// sequence (or fork/join tree) of grounded actions that drives the state to
// satisfy the target, returning a dag.Graph the runtime can walk.
package planner

import (
	"time"

	"github.com/voocel/recon/dag"
	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/task"
)

// Stats accumulates search metrics for one Find call.
type Stats struct {
	Iterations int
	MaxDepth   int
	Time       time.Duration
}

// Plan is the result of a Find call: either a successful plan (possibly
// empty, meaning the target is already satisfied) or a failure.
type Plan struct {
	Success        bool
	Start          dag.ID
	State          any
	PendingChanges []diff.Operation
	Stats          Stats
	Graph          *dag.Graph
	Error          error
}

// Planner searches a task.Registry for plans. The zero value is not usable;
// construct with New.
type Planner struct {
	registry       *task.Registry
	maxSearchDepth int
	trace          func(Event)
}

// Option configures a Planner at construction.
type Option func(*Planner)

// WithRegistry sets the task registry searched for applicable tasks.
func WithRegistry(r *task.Registry) Option { return func(p *Planner) { p.registry = r } }

// WithMaxSearchDepth bounds recursion depth, guaranteeing search
// termination even given tasks whose effects never reduce the distance to
// target.
func WithMaxSearchDepth(n int) Option { return func(p *Planner) { p.maxSearchDepth = n } }

// WithTrace installs a sink for structured search events.
func WithTrace(fn func(Event)) Option { return func(p *Planner) { p.trace = fn } }

// New builds a Planner, defaulting to an empty registry, a search depth of
// 64, and a no-op trace sink.
func New(opts ...Option) *Planner {
	p := &Planner{
		registry:       task.NewRegistry(),
		maxSearchDepth: 64,
		trace:          func(Event) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Find searches for a plan taking current to a state satisfying target.
func (p *Planner) Find(current, target any) *Plan {
	g := dag.New()
	s := &search{
		reg:     p.registry,
		maxDepth: p.maxSearchDepth,
		trace:   p.trace,
		onPath:  map[string]bool{},
		g:       g,
		d:       diff.Of(current, target),
		stats:   &Stats{},
	}
	s.trace(Event{Kind: EventStart, State: current})

	began := time.Now()
	head, state, pending, err := s.find(current, 0)
	s.stats.Time = time.Since(began)

	if err != nil {
		s.trace(Event{Kind: EventFailed, Err: err})
		return &Plan{Success: false, Stats: *s.stats, Graph: g, Error: err}
	}
	s.trace(Event{Kind: EventFound})
	s.trace(Event{Kind: EventSuccess, Start: head})
	return &Plan{
		Success:        true,
		Start:          head,
		State:          state,
		PendingChanges: pending,
		Stats:          *s.stats,
		Graph:          g,
	}
}
