// Package runtime implements the agent control loop: repeatedly ask a
// planner.Planner for a plan, walk the emitted dag.Graph executing
// actions, enforce cancellation and backoff, and integrate asynchronous
// sensor updates.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voocel/recon/dag"
	"github.com/voocel/recon/planner"
	"github.com/voocel/recon/sensor"
)

// Result is what a loop settles to: success, cancellation, or failure.
type Result struct {
	RunID   string
	Success bool
	State   any
	Err     error
	Tries   int
}

// Runtime is the control loop driving an initial state toward a target
// via a Planner, optionally following live sensor updates.
type Runtime struct {
	box     *stateBox
	planner *planner.Planner
	sensors []sensor.Sensor
	opts    Options

	mu      sync.Mutex
	target  any
	running bool
	runID   string
	cancel  context.CancelFunc
	done    chan struct{}
	result  Result
	subs    []sensor.Subscription
	wake    chan struct{}
}

// New builds a Runtime over initial state, searching p for a plan driving
// the state toward target, and subscribing to sensors once Start is
// called.
func New(initial, target any, p *planner.Planner, sensors []sensor.Sensor, opts ...Option) *Runtime {
	o := ResolveOptions(opts...)
	return &Runtime{
		box:     newStateBox(initial),
		target:  target,
		planner: p,
		sensors: sensors,
		opts:    o,
		wake:    make(chan struct{}, 1),
	}
}

// SetTarget installs a new target read by the next planning iteration and
// wakes the loop if it is currently backed off.
func (r *Runtime) SetTarget(target any) {
	r.mu.Lock()
	r.target = target
	r.mu.Unlock()
	r.nudge()
}

func (r *Runtime) getTarget() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// State returns a snapshot of the currently observed state.
func (r *Runtime) State() any {
	return r.box.get()
}

// Start spawns the planning/execution loop against ctx. Idempotent while
// already running.
func (r *Runtime) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.runID = uuid.NewString()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	r.subscribeSensors()
	go r.loop(loopCtx)
}

// Stop requests cancellation, awaits loop completion, detaches sensors,
// and returns the settled Result. Stopping a loop that already settled
// returns its result; stopping a never-started runtime returns
// ErrNotStarted.
func (r *Runtime) Stop() Result {
	r.mu.Lock()
	if !r.running {
		if r.done != nil {
			result := r.result
			r.mu.Unlock()
			return result
		}
		r.mu.Unlock()
		return Result{Success: false, Err: ErrNotStarted, State: r.box.get()}
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
	return r.lastResult()
}

func (r *Runtime) lastResult() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Wait blocks until the loop finishes, or until timeout elapses. A
// timeout <= 0 waits forever. Wait never affects the loop itself.
func (r *Runtime) Wait(timeout time.Duration) (Result, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return Result{}, ErrNotStarted
	}

	if timeout <= 0 {
		<-done
		return r.lastResult(), nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return r.lastResult(), nil
	case <-timer.C:
		return Result{}, &TimeoutError{Timeout: timeout.String()}
	}
}

func (r *Runtime) nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runtime) subscribeSensors() {
	for _, s := range r.sensors {
		sub := s.Subscribe(func(mutate sensor.MutateFunc) {
			before := r.box.get()
			after, err := mutate(before)
			if err != nil {
				return
			}
			if applyErr := r.box.applyDelta(before, after); applyErr != nil {
				return
			}
			if r.opts.Follow {
				r.nudge()
			}
		})
		r.mu.Lock()
		r.subs = append(r.subs, sub)
		r.mu.Unlock()
	}
}

func (r *Runtime) unsubscribeSensors() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (r *Runtime) finish(res Result) {
	r.mu.Lock()
	res.RunID = r.runID
	r.result = res
	r.running = false
	r.mu.Unlock()
}

// loop is the control loop: plan, walk, backoff on failure, replan on
// drift, until success, exhausted retries, or cancellation.
func (r *Runtime) loop(ctx context.Context) {
	defer close(r.done)
	defer r.unsubscribeSensors()

	tries := 0
	for {
		select {
		case <-ctx.Done():
			r.finish(Result{Success: false, Err: ErrStopped, State: r.box.get()})
			return
		default:
		}

		cur := r.box.get()
		plan := r.planner.Find(cur, r.getTarget())

		if !plan.Success {
			tries++
			if r.opts.MaxRetries > 0 && tries >= r.opts.MaxRetries {
				r.finish(Result{Success: false, Err: &FailureError{Tries: tries}, State: r.box.get(), Tries: tries})
				return
			}
			if !r.sleep(ctx, r.opts.backoff(tries)) {
				r.finish(Result{Success: false, Err: ErrStopped, State: r.box.get()})
				return
			}
			continue
		}

		if plan.Start == dag.Nil {
			r.finish(Result{Success: true, State: r.box.get()})
			return
		}

		err := r.execute(ctx, plan.Graph, plan.Start)
		if err == nil {
			// The walk completed; the goal may require further passes
			// (methods can encode latent progress), loop again.
			continue
		}

		switch err.(type) {
		case *ActionConditionFailedError:
			// State drifted from the planner's view; replan immediately,
			// a plan *was* found so this doesn't count against tries.
			continue
		case *ActionRunFailedError:
			tries++
			if r.opts.MaxRetries > 0 && tries >= r.opts.MaxRetries {
				r.finish(Result{Success: false, Err: &FailureError{Tries: tries}, State: r.box.get(), Tries: tries})
				return
			}
			if !r.sleep(ctx, r.opts.backoff(tries)) {
				r.finish(Result{Success: false, Err: ErrStopped, State: r.box.get()})
				return
			}
			continue
		default:
			if err == ErrStopped {
				r.finish(Result{Success: false, Err: ErrStopped, State: r.box.get()})
				return
			}
			r.finish(Result{Success: false, Err: &UnknownError{Cause: err}, State: r.box.get()})
			return
		}
	}
}

// sleep waits for d, waking early on cancellation or a follow-mode sensor
// nudge. Returns false when the wait ended because of cancellation.
func (r *Runtime) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-r.wake:
		return true
	}
}
