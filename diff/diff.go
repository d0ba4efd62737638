// Package diff computes the ordered list of operations that transform a
// state into one satisfying a deep-partial target patch.
package diff

import (
	"reflect"
	"sort"

	"github.com/voocel/recon/pointer"
)

// Kind tags an Operation as a create, update, or delete.
type Kind string

const (
	Create Kind = "create"
	Update Kind = "update"
	Delete Kind = "delete"
)

// Operation is one pending change: a path plus (for create/update) the
// value it should hold.
type Operation struct {
	Kind   Kind
	Path   pointer.Path
	Target any
}

type deletedSentinel struct{}

// Deleted is the sentinel placed at any node of a target patch to mark that
// node for removal.
var Deleted any = deletedSentinel{}

// ApplyPatch applies a deep-partial patch (which may contain Deleted
// sentinels at any depth) onto src, returning the resulting concrete value.
// A patch map is merged key-by-key against src; any other patch value
// (scalar, slice, or Deleted) replaces the corresponding src node wholesale.
func ApplyPatch(src, patch any) any {
	if patch == Deleted {
		return nil
	}
	pm, isPatchMap := patch.(map[string]any)
	if !isPatchMap {
		return patch
	}
	sm, _ := src.(map[string]any)
	out := make(map[string]any, len(sm)+len(pm))
	for k, v := range sm {
		out[k] = v
	}
	for k, v := range pm {
		if v == Deleted {
			delete(out, k)
			continue
		}
		if _, ok := v.(map[string]any); ok {
			out[k] = ApplyPatch(out[k], v)
		} else {
			out[k] = v
		}
	}
	return out
}

// Diff diffs an evolving state against a target resolved once from
// (src, patch) at construction time.
type Diff struct {
	target any
}

// Of resolves target (a deep-partial patch, possibly containing Deleted
// sentinels) against src, and returns a Diff bound to the result. Ops is
// then called repeatedly as state evolves during planning, always compared
// against this same resolved target.
func Of(src, target any) *Diff {
	return &Diff{target: ApplyPatch(src, target)}
}

// Target returns the fully resolved desired value (the patch applied to
// the original source), used by the planner to read target leaf values
// during grounding.
func (d *Diff) Target() any {
	return d.target
}

type queueItem struct {
	path pointer.Path
	src  any
	tgt  any
}

// Ops produces the ordered list of operations needed to transform state
// into a value satisfying the resolved target: shallower paths first,
// stable otherwise.
func (d *Diff) Ops(state any) []Operation {
	var ops []Operation
	queue := []queueItem{{path: pointer.Path{}, src: state, tgt: d.target}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		sm, sIsMap := item.src.(map[string]any)
		tm, tIsMap := item.tgt.(map[string]any)

		if sIsMap && tIsMap {
			for _, k := range unionSortedKeys(sm, tm) {
				cp := childPath(item.path, k)
				sv, sPresent := sm[k]
				tv, tPresent := tm[k]
				switch {
				case tPresent && !sPresent:
					ops = append(ops, Operation{Kind: Create, Path: cp, Target: tv})
				case sPresent && !tPresent:
					ops = append(ops, Operation{Kind: Delete, Path: cp})
					appendSubtreeDeletes(&ops, cp, sv)
				case sPresent && tPresent:
					queue = append(queue, queueItem{path: cp, src: sv, tgt: tv})
				}
			}
			continue
		}

		if !reflect.DeepEqual(item.src, item.tgt) {
			ops = append(ops, Operation{Kind: Update, Path: item.path, Target: item.tgt})
		}
	}

	return ops
}

func appendSubtreeDeletes(ops *[]Operation, path pointer.Path, src any) {
	sm, ok := src.(map[string]any)
	if !ok {
		return
	}
	for _, k := range sortedKeys(sm) {
		cp := childPath(path, k)
		*ops = append(*ops, Operation{Kind: Delete, Path: cp})
		appendSubtreeDeletes(ops, cp, sm[k])
	}
}

func childPath(path pointer.Path, key string) pointer.Path {
	out := make(pointer.Path, len(path)+1)
	copy(out, path)
	out[len(path)] = pointer.Segment{Key: key}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unionSortedKeys(a, b map[string]any) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
