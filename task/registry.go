package task

import (
	"sort"

	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/lens"
)

// Registry holds task definitions and grounds them into instructions.
type Registry struct {
	tasks []*Task
}

// NewRegistry builds a Registry from the given tasks.
func NewRegistry(tasks ...*Task) *Registry {
	r := &Registry{}
	r.Register(tasks...)
	return r
}

// Register adds tasks to the registry. The registry is kept sorted so
// methods precede actions: the planner therefore prefers compound
// expansions when both are applicable, falling back to actions on failure.
func (r *Registry) Register(tasks ...*Task) {
	r.tasks = append(r.tasks, tasks...)
	sort.SliceStable(r.tasks, func(i, j int) bool {
		return r.tasks[i].IsMethod() && !r.tasks[j].IsMethod()
	})
}

// Tasks returns the registered tasks in search order (methods first).
func (r *Registry) Tasks() []*Task {
	return r.tasks
}

// Applicable returns the tasks applicable to op, methods first: task.Op
// matches (or is wildcard), the lens template's segment count matches
// op.Path, and every literal template segment matches the concrete path.
func (r *Registry) Applicable(op diff.Operation) []*Task {
	var out []*Task
	for _, t := range r.tasks {
		if isApplicable(t, op) {
			out = append(out, t)
		}
	}
	return out
}

func isApplicable(t *Task, op diff.Operation) bool {
	if t.Op != OpAny && t.Op != Op(op.Kind) {
		return false
	}
	_, err := lens.Match(t.Lens, op.Path.String(), op.Target)
	return err == nil
}

// Ground binds t's lens template to op's concrete path and target value,
// producing a content-addressed Instruction.
func Ground(t *Task, op diff.Operation) (Instruction, error) {
	ctx, err := lens.Match(t.Lens, op.Path.String(), op.Target)
	if err != nil {
		return Instruction{}, err
	}
	id := ContentHash(t.ID, ctx.PathString(), ctx.Target)
	return Instruction{ID: id, Task: t, Ctx: ctx}, nil
}
