// Package recon builds an autonomous reconfiguration agent: given an
// initial state, a set of tasks, and optional sensors, it synthesizes and
// executes a plan that drives the state toward a target, replanning as
// needed.
package recon

import (
	"context"
	"time"

	"github.com/voocel/recon/observer"
	"github.com/voocel/recon/planner"
	"github.com/voocel/recon/runtime"
	"github.com/voocel/recon/sensor"
	"github.com/voocel/recon/task"
)

// Config holds an Agent's construction inputs. Tasks and Planner are
// mutually exclusive paths to a registry: either hand the agent a flat
// task list and let it build a default planner, or hand it a fully
// configured Planner directly.
type Config struct {
	Initial     any
	Tasks       []*task.Task
	Planner     *planner.Planner
	Sensors     []sensor.Sensor
	RuntimeOpts []runtime.Option
}

// Agent wraps a Runtime with a construction-time convenience surface.
type Agent struct {
	rt *runtime.Runtime
}

// New builds an Agent from initial state, applying opts. With no
// WithPlanner, a default planner is built from WithTasks over a registry
// sorted methods-first (task.Registry's own invariant).
func New(initial any, opts ...Option) *Agent {
	cfg := Config{Initial: initial}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := cfg.Planner
	if p == nil {
		reg := task.NewRegistry(cfg.Tasks...)
		ro := runtime.ResolveOptions(cfg.RuntimeOpts...)
		p = planner.New(
			planner.WithRegistry(reg),
			planner.WithMaxSearchDepth(ro.MaxSearchDepth),
			planner.WithTrace(observer.PlannerTrace(ro.Sink)),
		)
	}

	rt := runtime.New(cfg.Initial, cfg.Initial, p, cfg.Sensors, cfg.RuntimeOpts...)
	return &Agent{rt: rt}
}

// Seek installs target as the agent's goal and (re)starts the control
// loop toward it, following ctx for cancellation in addition to Stop.
func (a *Agent) Seek(ctx context.Context, target any) {
	a.rt.SetTarget(target)
	a.rt.Start(ctx)
}

// Wait blocks until the current run settles, bounded by timeout (<=0
// waits forever).
func (a *Agent) Wait(timeout time.Duration) (runtime.Result, error) {
	return a.rt.Wait(timeout)
}

// State returns a snapshot of the agent's currently observed state.
func (a *Agent) State() any {
	return a.rt.State()
}

// Stop requests cancellation and awaits the run's completion.
func (a *Agent) Stop() runtime.Result {
	return a.rt.Stop()
}
