package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon/pointer"
)

func TestParseRoundTrip(t *testing.T) {
	p, err := pointer.Parse("/a/b/0/c")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/0/c", p.String())
}

func TestParseEmpty(t *testing.T) {
	p, err := pointer.Parse("/")
	require.NoError(t, err)
	assert.Equal(t, pointer.Path{}, p)
	assert.Equal(t, "/", p.String())
}

func TestParseEscaping(t *testing.T) {
	p, err := pointer.Parse("/a~1b/c~0d")
	require.NoError(t, err)
	require.Len(t, p, 2)
	assert.Equal(t, "a/b", p[0].Key)
	assert.Equal(t, "c~d", p[1].Key)
}

func TestGetMissingIntermediate(t *testing.T) {
	state := map[string]any{"a": map[string]any{}}
	p, _ := pointer.Parse("/a/b/c")
	v, ok, err := pointer.Get(state, p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestGetWrongKind(t *testing.T) {
	state := map[string]any{"a": "scalar"}
	p, _ := pointer.Parse("/a/b")
	_, _, err := pointer.Get(state, p)
	require.Error(t, err)
	var ip *pointer.InvalidPointer
	assert.ErrorAs(t, err, &ip)
}

func TestGetArrayIndex(t *testing.T) {
	state := map[string]any{"a": []any{10, 20, 30}}
	p, _ := pointer.Parse("/a/1")
	v, ok, err := pointer.Get(state, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestGetNonIndexIntoArray(t *testing.T) {
	state := map[string]any{"a": []any{1, 2}}
	p, _ := pointer.Parse("/a/x")
	_, _, err := pointer.Get(state, p)
	require.Error(t, err)
}

func TestSetLensLaws(t *testing.T) {
	p, _ := pointer.Parse("/a/b")
	state := map[string]any{"a": map[string]any{"b": 1, "other": 2}}

	// get(set(s, v)) = v
	s1, err := pointer.Set(state, p, 42)
	require.NoError(t, err)
	v, ok, err := pointer.Get(s1, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// set(s, get(s)) = s
	orig, _, _ := pointer.Get(state, p)
	s2, err := pointer.Set(state, p, orig)
	require.NoError(t, err)
	assert.Equal(t, state, s2)

	// set(set(s,a),b) = set(s,b)
	sa, _ := pointer.Set(state, p, "a")
	sab, _ := pointer.Set(sa, p, "b")
	sb, _ := pointer.Set(state, p, "b")
	assert.Equal(t, sb, sab)
}

func TestSetCreatesIntermediateMaps(t *testing.T) {
	p, _ := pointer.Parse("/a/b/c")
	out, err := pointer.Set(map[string]any{}, p, "v")
	require.NoError(t, err)
	v, ok, err := pointer.Get(out, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSetDoesNotMutateInput(t *testing.T) {
	state := map[string]any{"a": map[string]any{"b": 1}}
	p, _ := pointer.Parse("/a/b")
	_, err := pointer.Set(state, p, 99)
	require.NoError(t, err)
	v := state["a"].(map[string]any)["b"]
	assert.Equal(t, 1, v)
}

func TestDelete(t *testing.T) {
	state := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
	p, _ := pointer.Parse("/a/b")
	out, err := pointer.Delete(state, p)
	require.NoError(t, err)
	_, ok, _ := pointer.Get(out, p)
	assert.False(t, ok)
	// sibling untouched
	cp, _ := pointer.Parse("/a/c")
	v, ok, _ := pointer.Get(out, cp)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDeleteArrayElement(t *testing.T) {
	state := map[string]any{"a": []any{1, 2, 3}}
	p, _ := pointer.Parse("/a/1")
	out, err := pointer.Delete(state, p)
	require.NoError(t, err)
	arr := out.(map[string]any)["a"].([]any)
	assert.Equal(t, []any{1, 3}, arr)
}
