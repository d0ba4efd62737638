package planner

import (
	"fmt"

	"github.com/voocel/recon/dag"
	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/pointer"
	"github.com/voocel/recon/task"
)

// search holds the mutable state of one Find call: the arena the plan is
// built into, the diff driving the search, and the onPath guard set (keys
// of the actions and methods currently open along the root-to-leaf path
// being explored, prefixed "a:" and "m:") that detects loops and
// self-recursion.
type search struct {
	reg      *task.Registry
	maxDepth int
	trace    func(Event)
	onPath   map[string]bool
	g        *dag.Graph
	d        *diff.Diff
	stats    *Stats
}

// find returns a self-contained plan fragment for driving state towards
// the target, with its own trailing edge(s) left as dag.Nil: the caller
// either accepts that as the true end of the plan or retargets it onto
// whatever comes next.
func (s *search) find(state any, depth int) (dag.ID, any, []diff.Operation, error) {
	if depth > s.maxDepth {
		return dag.Nil, nil, nil, &SearchFailedError{Depth: depth}
	}
	if depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}

	ops := s.d.Ops(state)
	s.trace(Event{Kind: EventFindNext, Depth: depth, State: state, Operations: ops})
	if len(ops) == 0 {
		return dag.Nil, state, nil, nil
	}

	for _, op := range ops {
		for _, t := range s.reg.Applicable(op) {
			s.stats.Iterations++
			head, newState, pending, err := s.attempt(op, t, state, depth)
			if err == nil {
				return head, newState, pending, nil
			}
		}
	}
	return dag.Nil, nil, nil, &SearchFailedError{Depth: depth}
}

// attempt grounds t against op and tries it: on success it recurses to
// plan the remainder and splices that remainder onto its own tail before
// returning. The onPath guard has two scopes: a method's (state-
// independent) key brackets only its own expansion, released before the
// continuation is planned, so a method reapplied for further incremental
// progress (a per-counter increment method fired until its counter
// reaches its target) isn't rejected as spurious recursion; an action's
// (state-sensitive) key is held through the continuation, rejecting the
// same action replayed from the same state anywhere down the current
// root-to-leaf path.
func (s *search) attempt(op diff.Operation, t *task.Task, state any, depth int) (dag.ID, any, []diff.Operation, error) {
	instr, err := task.Ground(t, op)
	if err != nil {
		return dag.Nil, nil, nil, err
	}
	s.trace(Event{Kind: EventTryInstruction, Depth: depth, Instruction: &instr, Operation: &op})
	if !instr.ConditionOK(state) {
		return dag.Nil, nil, nil, ErrConditionNotMet
	}

	isMethod := instr.Task.IsMethod()
	key := guardKey(instr, state, isMethod)
	if s.onPath[key] {
		if isMethod {
			return dag.Nil, nil, nil, ErrRecursionDetected
		}
		return dag.Nil, nil, nil, ErrLoopDetected
	}
	s.onPath[key] = true

	var thisHead dag.ID
	var midState any
	var pending []diff.Operation
	if isMethod {
		// Call-stack scope: a method may legitimately fire again later in
		// the same branch once its expansion has made partial progress, so
		// its guard is released before the continuation is planned.
		thisHead, midState, pending, err = s.tryMethod(instr, state, depth)
		delete(s.onPath, key)
	} else {
		// Root-path scope: the action key hashes the state at its path, so
		// it only recurs when the effect made no progress. Holding it
		// through the continuation rejects exactly those loops.
		thisHead, midState, pending, err = s.tryAction(instr, state)
		defer delete(s.onPath, key)
	}
	if err != nil {
		return dag.Nil, nil, nil, err
	}
	if thisHead == dag.Nil {
		return dag.Nil, nil, nil, ErrMethodExpansionEmpty
	}

	restHead, finalState, restPending, err := s.find(midState, depth+1)
	if err != nil {
		return dag.Nil, nil, nil, err
	}
	if restHead != dag.Nil {
		s.g.Retarget(thisHead, restHead)
	}
	return thisHead, finalState, append(pending, restPending...), nil
}

// actionLoopID computes the state-sensitive node id used for loop
// detection: a hash of (action id, path, structural hash of the state
// value currently bound at that path, target). This is distinct from
// instr.ID (task.Ground's content-addressed grounding id, which hashes
// only task id + path + target and is therefore state-independent): the
// same instr.ID legitimately recurs along a root-to-leaf path whenever a
// task is reapplied toward a fixed goal, while actionLoopID only repeats
// for a genuine no-progress loop.
func actionLoopID(instr task.Instruction, state any) string {
	val, _, _ := pointer.Get(state, instr.Ctx.Path)
	return task.ContentHash(instr.Task.ID, instr.Ctx.PathString(), task.ContentHash(val), instr.Ctx.Target)
}

func guardKey(instr task.Instruction, state any, isMethod bool) string {
	if isMethod {
		return "m:" + instr.ID
	}
	return "a:" + actionLoopID(instr, state)
}

// tryAction computes the action's effect, diffs the local change (for
// later conflict detection against sibling branches), and appends an
// action node with an unresolved tail, tagged with its state-sensitive
// loop-detection id so dag.Validate can dedupe on the same basis the
// search itself uses, rather than on the state-independent instr.ID.
func (s *search) tryAction(instr task.Instruction, state any) (dag.ID, any, []diff.Operation, error) {
	newState, err := instr.ApplyEffect(state)
	if err != nil {
		return dag.Nil, nil, nil, err
	}
	pending := diff.Of(state, newState).Ops(state)
	head := s.g.AddAction(instr, actionLoopID(instr, state), dag.Nil)
	return head, newState, pending, nil
}

// tryMethod expands a method task into children and dispatches to the
// task's configured expansion mode.
func (s *search) tryMethod(instr task.Instruction, state any, depth int) (dag.ID, any, []diff.Operation, error) {
	children, err := instr.Expand(state)
	if err != nil {
		return dag.Nil, nil, nil, err
	}
	if len(children) == 0 {
		return dag.Nil, state, nil, nil
	}
	if instr.Task.Sequential {
		return s.trySequential(children, state, depth)
	}
	return s.tryParallel(children, state, depth)
}

// applyChild dispatches one of a method's already-chosen children (no
// further task/op search: the method decided what runs), guarding its own
// subtree against loops/recursion for its own dynamic extent only.
func (s *search) applyChild(instr task.Instruction, state any, depth int) (dag.ID, any, []diff.Operation, error) {
	if !instr.ConditionOK(state) {
		return dag.Nil, nil, nil, ErrConditionNotMet
	}
	isMethod := instr.Task.IsMethod()
	key := guardKey(instr, state, isMethod)
	if s.onPath[key] {
		if isMethod {
			return dag.Nil, nil, nil, ErrRecursionDetected
		}
		return dag.Nil, nil, nil, ErrLoopDetected
	}
	s.onPath[key] = true
	defer delete(s.onPath, key)

	if isMethod {
		return s.tryMethod(instr, state, depth)
	}
	return s.tryAction(instr, state)
}

// trySequential plans each child in turn, splicing each one's tail onto
// the next child's head as it goes.
func (s *search) trySequential(children []task.Instruction, state any, depth int) (dag.ID, any, []diff.Operation, error) {
	chainHead, lastTail := dag.Nil, dag.Nil
	curState := state
	var allPending []diff.Operation

	for _, child := range children {
		head, newState, pending, err := s.applyChild(child, curState, depth+1)
		if err != nil {
			return dag.Nil, nil, nil, err
		}
		curState = newState
		if head == dag.Nil {
			continue
		}
		if chainHead == dag.Nil {
			chainHead = head
		} else {
			s.g.Retarget(lastTail, head)
		}
		lastTail = head
		allPending = append(allPending, pending...)
	}
	return chainHead, curState, allPending, nil
}

type branch struct {
	head    dag.ID
	state   any
	pending []diff.Operation
}

// tryParallel plans every child independently from the same initial
// state, checks for a path-prefix conflict between their pending changes,
// and either wraps the branch heads in a Fork/Join pair or falls back to
// sequential expansion.
func (s *search) tryParallel(children []task.Instruction, state any, depth int) (dag.ID, any, []diff.Operation, error) {
	var branches []branch
	for _, child := range children {
		head, newState, pending, err := s.applyChild(child, state, depth+1)
		if err != nil {
			return dag.Nil, nil, nil, err
		}
		if head == dag.Nil {
			continue
		}
		branches = append(branches, branch{head: head, state: newState, pending: pending})
	}
	if len(branches) == 0 {
		return dag.Nil, state, nil, nil
	}
	if a, b, conflict := detectConflict(branches); conflict {
		s.trace(Event{Kind: EventBacktrackMethod, Depth: depth, Err: &ConflictError{A: a, B: b}})
		return s.trySequential(children, state, depth)
	}
	if len(branches) == 1 {
		b := branches[0]
		return b.head, b.state, b.pending, nil
	}

	mergedState := state
	var allPending []diff.Operation
	ids := make([]dag.ID, len(branches))
	for i, b := range branches {
		ids[i] = b.head
		allPending = append(allPending, b.pending...)
		for _, op := range b.pending {
			merged, err := applyOp(mergedState, op)
			if err != nil {
				return dag.Nil, nil, nil, fmt.Errorf("%w: %s %s: %v", ErrMergeFailed, op.Kind, op.Path, err)
			}
			mergedState = merged
		}
	}
	joinID := s.g.AddJoin(dag.Nil)
	for _, b := range branches {
		s.g.Retarget(b.head, joinID)
	}
	forkID := s.g.AddFork(ids, joinID)
	return forkID, mergedState, allPending, nil
}

func applyOp(state any, op diff.Operation) (any, error) {
	switch op.Kind {
	case diff.Create, diff.Update:
		return pointer.Set(state, op.Path, op.Target)
	case diff.Delete:
		return pointer.Delete(state, op.Path)
	}
	return state, nil
}

func detectConflict(branches []branch) (diff.Operation, diff.Operation, bool) {
	for i := 0; i < len(branches); i++ {
		for j := i + 1; j < len(branches); j++ {
			for _, a := range branches[i].pending {
				for _, b := range branches[j].pending {
					if sharesPrefix(a.Path, b.Path) {
						return a, b, true
					}
				}
			}
		}
	}
	return diff.Operation{}, diff.Operation{}, false
}

func sharesPrefix(a, b pointer.Path) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
