// Package lens binds a path template (with ":param" placeholders) to a
// concrete path, producing a Context: a (get, set, delete) triple plus the
// parameter bindings extracted from the match.
package lens

import (
	"fmt"

	"github.com/voocel/recon/pointer"
)

// MatchError is returned when a template fails to match a concrete path:
// differing segment counts or a literal segment mismatch.
type MatchError struct {
	Template string
	Concrete string
	Reason   string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("lens: template %q does not match path %q: %s", e.Template, e.Concrete, e.Reason)
}

// Context is an immutable binding produced by matching a template against a
// concrete path. It satisfies the functional-lens laws with respect to its
// Path: Get(Set(s,v))==v, Set(s,Get(s))==s, Set(Set(s,a),b)==Set(s,b).
type Context struct {
	Path   pointer.Path
	Target any
	Params map[string]any
}

// Get reads the bound path from state.
func (c Context) Get(state any) (any, bool, error) {
	return pointer.Get(state, c.Path)
}

// Set writes value at the bound path, returning the new state.
func (c Context) Set(state any, value any) (any, error) {
	return pointer.Set(state, c.Path, value)
}

// Delete removes the bound path from state, returning the new state.
func (c Context) Delete(state any) (any, error) {
	return pointer.Delete(state, c.Path)
}

// Param returns a bound placeholder value.
func (c Context) Param(name string) (any, bool) {
	v, ok := c.Params[name]
	return v, ok
}

// PathString renders the concrete path this context is bound to.
func (c Context) PathString() string {
	return c.Path.String()
}

// Match binds template against concretePath. Literal segments in template
// must match the corresponding concrete segment exactly; ":name" segments
// bind the concrete segment (coerced to int when the concrete segment is
// numeric) into the parameter bag.
func Match(template, concretePath string, target any) (Context, error) {
	tmpl, err := pointer.Parse(template)
	if err != nil {
		return Context{}, err
	}
	concrete, err := pointer.Parse(concretePath)
	if err != nil {
		return Context{}, err
	}
	if len(tmpl) != len(concrete) {
		return Context{}, &MatchError{Template: template, Concrete: concretePath, Reason: "segment count mismatch"}
	}

	params := make(map[string]any, len(tmpl))
	for i, ts := range tmpl {
		cs := concrete[i]
		if ts.Param {
			if cs.IsIndex {
				params[ts.Key] = cs.Index
			} else {
				params[ts.Key] = cs.Key
			}
			continue
		}
		if ts.IsIndex != cs.IsIndex || ts.Key != cs.Key {
			return Context{}, &MatchError{
				Template: template,
				Concrete: concretePath,
				Reason:   fmt.Sprintf("literal segment %d (%q) does not match %q", i, ts.Key, cs.Key),
			}
		}
	}

	return Context{Path: concrete, Target: target, Params: params}, nil
}

// SegmentCount reports how many segments a path template has. The task
// registry does not call it; its applicability test uses Match.
func SegmentCount(template string) (int, error) {
	p, err := pointer.Parse(template)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
