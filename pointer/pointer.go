// Package pointer parses RFC-6901-like paths and reads/writes values in a
// JSON-like state tree (maps, slices, scalars).
package pointer

import (
	"strconv"
	"strings"
)

// Segment is one parsed path component. A literal segment carries Key; a
// numeric segment carries Index and IsIndex=true; a placeholder (":name")
// segment carries Key (without the colon) with Param=true. Parse produces
// placeholder segments for any ":"-prefixed component; the lens package
// reads them from parsed templates.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
	Param   bool
}

// Path is a parsed sequence of segments. The empty Path denotes the whole
// state ("/").
type Path []Segment

// Parse splits a slash-separated path into segments, unescaping "~1" to "/"
// and "~0" to "~" per RFC-6901. "/" and "" both parse to the empty Path.
func Parse(path string) (Path, error) {
	if path == "" || path == "/" {
		return Path{}, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, &InvalidPointer{Path: path, Reason: "path must start with '/'"}
	}
	raw := strings.Split(path[1:], "/")
	segs := make(Path, 0, len(raw))
	for _, r := range raw {
		r = unescape(r)
		if strings.HasPrefix(r, ":") {
			segs = append(segs, Segment{Key: strings.TrimPrefix(r, ":"), Param: true})
			continue
		}
		if n, err := strconv.Atoi(r); err == nil && (r == "0" || !strings.HasPrefix(r, "0")) {
			segs = append(segs, Segment{Key: r, Index: n, IsIndex: true})
			continue
		}
		segs = append(segs, Segment{Key: r})
	}
	return segs, nil
}

// String renders a Path back into its slash-separated form.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		switch {
		case s.Param:
			b.WriteByte(':')
			b.WriteString(s.Key)
		default:
			b.WriteString(escape(s.Key))
		}
	}
	return b.String()
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// InvalidPointer is returned when a segment traverses a value of the wrong
// kind (a non-index into a slice, or any segment through a scalar).
type InvalidPointer struct {
	Path   string
	Reason string
}

func (e *InvalidPointer) Error() string {
	return "invalid pointer " + e.Path + ": " + e.Reason
}

// Get reads the value at path within state. ok is false when an
// intermediate segment is absent from a map (the RFC-6901 "undefined"
// case); err is non-nil when a segment traverses the wrong kind of value.
func Get(state any, path Path) (value any, ok bool, err error) {
	cur := state
	for i, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, present := node[seg.Key]
			if !present {
				return nil, false, nil
			}
			cur = v
		case []any:
			if !seg.IsIndex {
				return nil, false, &InvalidPointer{Path: Path(path[:i+1]).String(), Reason: "non-index segment into array"}
			}
			if seg.Index < 0 || seg.Index >= len(node) {
				return nil, false, nil
			}
			cur = node[seg.Index]
		case nil:
			return nil, false, nil
		default:
			return nil, false, &InvalidPointer{Path: Path(path[:i+1]).String(), Reason: "traversal through scalar"}
		}
	}
	return cur, true, nil
}

// Set returns a new root value with path set to value, creating
// intermediate maps as needed. Only the branch along path is copied; the
// rest of the tree is shared with the input, so the result and the input
// are structurally independent only along path (persistent, copy-on-write).
func Set(state any, path Path, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	return setAt(state, path, value)
}

func setAt(node any, path Path, value any) (any, error) {
	seg := path[0]
	rest := path[1:]

	if seg.IsIndex {
		var arr []any
		switch n := node.(type) {
		case []any:
			arr = append([]any(nil), n...)
		case nil:
			arr = nil
		default:
			return nil, &InvalidPointer{Path: seg.Key, Reason: "cannot index non-array"}
		}
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		if len(rest) == 0 {
			arr[seg.Index] = value
			return arr, nil
		}
		child, err := setAt(arr[seg.Index], rest, value)
		if err != nil {
			return nil, err
		}
		arr[seg.Index] = child
		return arr, nil
	}

	var m map[string]any
	switch n := node.(type) {
	case map[string]any:
		m = make(map[string]any, len(n)+1)
		for k, v := range n {
			m[k] = v
		}
	case nil:
		m = make(map[string]any)
	default:
		return nil, &InvalidPointer{Path: seg.Key, Reason: "cannot set key on scalar"}
	}
	if len(rest) == 0 {
		m[seg.Key] = value
		return m, nil
	}
	child, err := setAt(m[seg.Key], rest, value)
	if err != nil {
		return nil, err
	}
	m[seg.Key] = child
	return m, nil
}

// Delete returns a new root value with path removed. Deleting a path that
// doesn't exist is a no-op.
func Delete(state any, path Path) (any, error) {
	if len(path) == 0 {
		return nil, nil
	}
	return deleteAt(state, path)
}

func deleteAt(node any, path Path) (any, error) {
	seg := path[0]
	rest := path[1:]

	if seg.IsIndex {
		arr, ok := node.([]any)
		if !ok || seg.Index < 0 || seg.Index >= len(arr) {
			return node, nil
		}
		cp := append([]any(nil), arr...)
		if len(rest) == 0 {
			return append(cp[:seg.Index], cp[seg.Index+1:]...), nil
		}
		child, err := deleteAt(cp[seg.Index], rest)
		if err != nil {
			return nil, err
		}
		cp[seg.Index] = child
		return cp, nil
	}

	m, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	if len(rest) == 0 {
		delete(cp, seg.Key)
		return cp, nil
	}
	child, present := cp[seg.Key]
	if !present {
		return cp, nil
	}
	newChild, err := deleteAt(child, rest)
	if err != nil {
		return nil, err
	}
	cp[seg.Key] = newChild
	return cp, nil
}
