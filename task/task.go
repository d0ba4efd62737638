// Package task defines task records (methods and actions), grounds them
// into Instructions against a concrete path, and holds the flat Registry
// the planner searches.
package task

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/lens"
)

// Op mirrors diff.Kind plus the task-only wildcard "*".
type Op string

const (
	OpCreate Op = Op(diff.Create)
	OpUpdate Op = Op(diff.Update)
	OpDelete Op = Op(diff.Delete)
	OpAny    Op = "*"
)

// ConditionFunc gates whether a grounded instruction may run.
type ConditionFunc func(state any, ctx lens.Context) bool

// EffectFunc is the pure state transition used during planning.
type EffectFunc func(state any, ctx lens.Context) (any, error)

// ActionFunc is the impure state transition executed by the runtime.
type ActionFunc func(ctx context.Context, state any, lctx lens.Context) (any, error)

// MethodFunc expands a compound task into child instructions. The task's
// Sequential flag decides whether the returned slice is walked as a chain
// or planned as parallel branches.
type MethodFunc func(state any, ctx lens.Context) ([]Instruction, error)

// DescriptionFunc renders a human-readable description from a grounded
// context, for tasks whose description depends on bound parameters.
type DescriptionFunc func(ctx lens.Context) string

// Task is an immutable task definition: either a method task (Method set)
// or an action task (Effect+Action set).
type Task struct {
	ID          string
	Description string
	DescribeFn  DescriptionFunc
	Lens        string
	Op          Op
	Condition   ConditionFunc
	Effect      EffectFunc
	Action      ActionFunc
	Method      MethodFunc
	Sequential  bool
}

// IsMethod reports whether this is a method (compound) task.
func (t *Task) IsMethod() bool { return t.Method != nil }

// Option configures a Task at construction.
type Option func(*Task)

func WithID(id string) Option { return func(t *Task) { t.ID = id } }

func WithDescription(desc string) Option { return func(t *Task) { t.Description = desc } }

func WithDescriptionFunc(fn DescriptionFunc) Option { return func(t *Task) { t.DescribeFn = fn } }

func WithLens(template string) Option { return func(t *Task) { t.Lens = template } }

func WithOp(op Op) Option { return func(t *Task) { t.Op = op } }

func WithCondition(fn ConditionFunc) Option { return func(t *Task) { t.Condition = fn } }

func WithEffect(fn EffectFunc) Option { return func(t *Task) { t.Effect = fn } }

func WithAction(fn ActionFunc) Option { return func(t *Task) { t.Action = fn } }

func WithMethod(fn MethodFunc) Option { return func(t *Task) { t.Method = fn } }

// WithSequential marks a method task for sequential (rather than parallel)
// expansion by default.
func WithSequential() Option { return func(t *Task) { t.Sequential = true } }

// New builds a Task with defaults: lens="/", op=update,
// condition=always-true, id=random.
func New(opts ...Option) *Task {
	t := &Task{
		ID:        uuid.NewString(),
		Lens:      "/",
		Op:        OpUpdate,
		Condition: func(any, lens.Context) bool { return true },
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.Description == "" {
		t.Description = t.ID
	}
	return t
}

// Instruction is a task grounded in a concrete Context: either an Action
// or a Method, identified by a content-addressed ID.
type Instruction struct {
	ID   string
	Task *Task
	Ctx  lens.Context
}

// Description renders the instruction's description, preferring the
// task's DescribeFn when present.
func (i Instruction) Description() string {
	if i.Task.DescribeFn != nil {
		return i.Task.DescribeFn(i.Ctx)
	}
	return i.Task.Description
}

// ConditionOK evaluates the instruction's condition against state.
func (i Instruction) ConditionOK(state any) bool {
	return i.Task.Condition(state, i.Ctx)
}

// ApplyEffect runs the pure effect used during planning.
func (i Instruction) ApplyEffect(state any) (any, error) {
	return i.Task.Effect(state, i.Ctx)
}

// Run executes the impure action used by the runtime.
func (i Instruction) Run(ctx context.Context, state any) (any, error) {
	return i.Task.Action(ctx, state, i.Ctx)
}

// Expand calls the method to produce child instructions.
func (i Instruction) Expand(state any) ([]Instruction, error) {
	return i.Task.Method(state, i.Ctx)
}

// ContentHash returns a stable content-addressed digest of parts, used both
// for an instruction's grounded ID (task id, path, target) and for the
// planner's loop-detection node id (action id, path, structural state hash,
// target).
func ContentHash(parts ...any) string {
	h, err := hashstructure.Hash(parts, hashstructure.FormatV2, nil)
	if err != nil {
		// hashstructure only errors on unsupported types (channels, funcs)
		// reachable here through user-supplied target values; fall back to
		// a fixed digest rather than making grounding fail outright.
		h = 0
	}
	return strconv.FormatUint(h, 16)
}
