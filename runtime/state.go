package runtime

import (
	"sync"

	"github.com/voocel/recon/diff"
	"github.com/voocel/recon/pointer"
)

// stateBox is the runtime's single mutable state cell. Every read and
// write goes through its mutex: fork branches and sensor callbacks run
// concurrently, and this is the one point their writes are serialized
// through.
type stateBox struct {
	mu    sync.Mutex
	value any
}

func newStateBox(initial any) *stateBox {
	return &stateBox{value: initial}
}

func (b *stateBox) get() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// applyDelta merges the change between before and after onto the box's
// current (possibly since-moved) value by replaying the diff ops between
// them, rather than overwriting the box wholesale. This is what lets two
// concurrent fork branches, each computed from the same `before` snapshot,
// land their disjoint writes without one clobbering the other: the
// planner's conflict-freedom check guarantees the two branches' paths
// never overlap, so replaying each one's ops in any order against the
// live value is safe.
func (b *stateBox) applyDelta(before, after any) error {
	ops := diff.Of(before, after).Ops(before)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, op := range ops {
		switch op.Kind {
		case diff.Create, diff.Update:
			v, err := pointer.Set(b.value, op.Path, op.Target)
			if err != nil {
				return err
			}
			b.value = v
		case diff.Delete:
			v, err := pointer.Delete(b.value, op.Path)
			if err != nil {
				return err
			}
			b.value = v
		}
	}
	return nil
}
