package runtime

import (
	"context"
	"sync"

	"github.com/voocel/recon/dag"
	"github.com/voocel/recon/observer"
)

// execute walks the plan DAG from start, running each action against r's
// state box. It returns nil once every reachable node has completed, or
// the first error raised by an action/condition/cancellation.
func (r *Runtime) execute(ctx context.Context, g *dag.Graph, start dag.ID) error {
	return r.walk(ctx, g, start, dag.Nil)
}

// walk runs nodes from id until it reaches stop (a fork's join, for a
// branch) or the end of the plan.
func (r *Runtime) walk(ctx context.Context, g *dag.Graph, id, stop dag.ID) error {
	for id != dag.Nil && id != stop {
		select {
		case <-ctx.Done():
			return ErrStopped
		default:
		}

		n := g.Node(id)
		switch n.Kind {
		case dag.KindAction:
			if err := r.runAction(ctx, n); err != nil {
				return err
			}
			id = n.Next
		case dag.KindJoin:
			id = n.Next
		case dag.KindFork:
			if err := r.runFork(ctx, g, n.Branches, n.Join); err != nil {
				return err
			}
			id = g.Node(n.Join).Next
		default:
			return nil
		}
	}
	return nil
}

// runFork walks every branch concurrently and waits for all of them to
// finish before returning: the paired join's successor is never entered
// while any branch is still running.
func (r *Runtime) runFork(ctx context.Context, g *dag.Graph, branches []dag.ID, join dag.ID) error {
	var wg sync.WaitGroup
	errs := make([]error, len(branches))
	for i, b := range branches {
		wg.Add(1)
		go func(i int, b dag.ID) {
			defer wg.Done()
			errs[i] = r.walk(ctx, g, b, join)
		}(i, b)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) runAction(ctx context.Context, n dag.Node) error {
	instr := n.Instruction
	before := r.box.get()
	if !instr.ConditionOK(before) {
		return &ActionConditionFailedError{Instruction: instr}
	}

	r.opts.Sink.Emit(observer.Event{Source: "runtime", Kind: "action-start", Fields: map[string]any{
		"run":    r.runID,
		"action": instr.Description(),
	}})

	after, err := instr.Run(ctx, before)
	if err != nil {
		r.opts.Sink.Emit(observer.Event{Source: "runtime", Kind: "action-failure", Fields: map[string]any{
			"run":    r.runID,
			"action": instr.Description(),
		}, Err: err})
		return &ActionRunFailedError{Instruction: instr, Cause: err}
	}

	if err := r.box.applyDelta(before, after); err != nil {
		return &ActionRunFailedError{Instruction: instr, Cause: err}
	}

	r.opts.Sink.Emit(observer.Event{Source: "runtime", Kind: "action-success", Fields: map[string]any{
		"run":    r.runID,
		"action": instr.Description(),
	}})
	return nil
}
