package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/pointer"
)

func applySet(state any, op diff.Operation) (any, error) {
	return pointer.Set(state, op.Path, op.Target)
}

func applyDelete(state any, op diff.Operation) (any, error) {
	return pointer.Delete(state, op.Path)
}

func opPaths(ops []diff.Operation) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = string(o.Kind) + " " + o.Path.String()
	}
	return out
}

func TestEmptyDiff(t *testing.T) {
	d := diff.Of(0, 0)
	assert.Empty(t, d.Ops(0))
}

func TestRootScalarUpdate(t *testing.T) {
	d := diff.Of(0, 1)
	ops := d.Ops(0)
	require.Len(t, ops, 1)
	assert.Equal(t, diff.Update, ops[0].Kind)
	assert.Equal(t, "/", ops[0].Path.String())
	assert.Equal(t, 1, ops[0].Target)
}

func TestCreateMissingLeaf(t *testing.T) {
	src := map[string]any{"a": 1}
	target := map[string]any{"b": 2}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 1)
	assert.Equal(t, diff.Create, ops[0].Kind)
	assert.Equal(t, "/b", ops[0].Path.String())
	assert.Equal(t, 2, ops[0].Target)
}

func TestCreateDoesNotRecurseIntoSubtree(t *testing.T) {
	src := map[string]any{}
	target := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 1)
	assert.Equal(t, diff.Create, ops[0].Kind)
	assert.Equal(t, "/a", ops[0].Path.String())
}

func TestDeleteMarksPresentValue(t *testing.T) {
	src := map[string]any{"a": 1, "b": 2}
	target := map[string]any{"a": diff.Deleted}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 1)
	assert.Equal(t, diff.Delete, ops[0].Kind)
	assert.Equal(t, "/a", ops[0].Path.String())
}

func TestDeleteRecursesIntoSubproperties(t *testing.T) {
	src := map[string]any{"a": map[string]any{"x": 1, "y": 2}}
	target := map[string]any{"a": diff.Deleted}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	paths := opPaths(ops)
	assert.Contains(t, paths, "delete /a")
	assert.Contains(t, paths, "delete /a/x")
	assert.Contains(t, paths, "delete /a/y")
}

func TestUpdateOnlyWhenNotDeeplyEqual(t *testing.T) {
	src := map[string]any{"a": 1, "b": 2}
	target := map[string]any{"a": 1, "b": 3}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 1)
	assert.Equal(t, diff.Update, ops[0].Kind)
	assert.Equal(t, "/b", ops[0].Path.String())
}

func TestCountersScenario(t *testing.T) {
	src := map[string]any{"a": 0, "b": 0}
	target := map[string]any{"a": 3, "b": 2}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 2)
	paths := opPaths(ops)
	assert.Contains(t, paths, "update /a")
	assert.Contains(t, paths, "update /b")
}

func TestOrderingShallowerFirst(t *testing.T) {
	target := map[string]any{
		"a": map[string]any{"x": 1},
		"b": 2,
	}
	// src has "a" present so the diff descends to /a/x; "b" is absent and
	// is created at the top level. Although "a" sorts before "b", the
	// shallower /b must come first.
	src := map[string]any{"a": map[string]any{}}
	d := diff.Of(src, target)
	ops := d.Ops(src)
	require.Len(t, ops, 2)
	assert.Equal(t, "/b", ops[0].Path.String())
	assert.Equal(t, "/a/x", ops[1].Path.String())
}

func TestApplyPatchRoundTrip(t *testing.T) {
	src := map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": 3}}
	target := map[string]any{"a": 5, "b": map[string]any{"d": diff.Deleted, "e": 9}}

	patched := diff.ApplyPatch(src, target)
	d := diff.Of(src, target)
	ops := d.Ops(src)

	// Applying the emitted ops by hand should reach the same patched value.
	var got any = src
	for _, op := range ops {
		switch op.Kind {
		case diff.Create, diff.Update:
			v, err := applySet(got, op)
			require.NoError(t, err)
			got = v
		case diff.Delete:
			v, err := applyDelete(got, op)
			require.NoError(t, err)
			got = v
		}
	}
	assert.Equal(t, patched, got)
}
