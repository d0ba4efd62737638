package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/lens"
	"github.com/voocel/recon/pointer"
	"github.com/voocel/recon/task"
)

func mustPath(t *testing.T, s string) pointer.Path {
	t.Helper()
	p, err := pointer.Parse(s)
	require.NoError(t, err)
	return p
}

func TestNewDefaults(t *testing.T) {
	tk := task.New()
	assert.Equal(t, "/", tk.Lens)
	assert.Equal(t, task.OpUpdate, tk.Op)
	assert.True(t, tk.Condition(nil, task.Instruction{}.Ctx))
	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, tk.ID, tk.Description)
}

func TestApplicabilitySegmentCountAndLiteral(t *testing.T) {
	tk := task.New(task.WithLens("/counters/:name"), task.WithOp(task.OpUpdate))
	reg := task.NewRegistry(tk)

	op := diff.Operation{Kind: diff.Update, Path: mustPath(t, "/counters/a"), Target: 3}
	assert.Len(t, reg.Applicable(op), 1)

	wrongDepth := diff.Operation{Kind: diff.Update, Path: mustPath(t, "/counters/a/b"), Target: 3}
	assert.Empty(t, reg.Applicable(wrongDepth))

	wrongLiteral := diff.Operation{Kind: diff.Update, Path: mustPath(t, "/other/a"), Target: 3}
	assert.Empty(t, reg.Applicable(wrongLiteral))

	wrongOp := diff.Operation{Kind: diff.Delete, Path: mustPath(t, "/counters/a")}
	assert.Empty(t, reg.Applicable(wrongOp))
}

func TestWildcardOpMatchesAny(t *testing.T) {
	tk := task.New(task.WithLens("/x"), task.WithOp(task.OpAny))
	reg := task.NewRegistry(tk)
	for _, k := range []diff.Kind{diff.Create, diff.Update, diff.Delete} {
		op := diff.Operation{Kind: k, Path: mustPath(t, "/x")}
		assert.Len(t, reg.Applicable(op), 1)
	}
}

func TestMethodsSortBeforeActions(t *testing.T) {
	action := task.New(task.WithID("action"), task.WithEffect(func(s any, c lens.Context) (any, error) { return s, nil }))
	method := task.New(task.WithID("method"), task.WithMethod(func(s any, c lens.Context) ([]task.Instruction, error) { return nil, nil }))
	reg := task.NewRegistry(action, method)
	tasks := reg.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "method", tasks[0].ID)
	assert.Equal(t, "action", tasks[1].ID)
}

func TestGroundProducesStableID(t *testing.T) {
	tk := task.New(task.WithID("incr"), task.WithLens("/counters/:name"))
	op := diff.Operation{Kind: diff.Update, Path: mustPath(t, "/counters/a"), Target: 3}

	i1, err := task.Ground(tk, op)
	require.NoError(t, err)
	i2, err := task.Ground(tk, op)
	require.NoError(t, err)
	assert.Equal(t, i1.ID, i2.ID)
	assert.Equal(t, "a", i1.Ctx.Params["name"])

	other := diff.Operation{Kind: diff.Update, Path: mustPath(t, "/counters/b"), Target: 3}
	i3, err := task.Ground(tk, other)
	require.NoError(t, err)
	assert.NotEqual(t, i1.ID, i3.ID)
}
