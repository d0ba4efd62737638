// Package dag represents a plan as an arena of Action, Fork, and Join nodes
// addressed by index rather than pointer, so join resolution never has to
// chase shared references and node equality is a plain integer comparison.
package dag

import (
	"fmt"
	"strings"

	"github.com/voocel/recon/task"
)

// Kind tags a Node's role in the plan.
type Kind int

const (
	KindAction Kind = iota
	KindFork
	KindJoin
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFork:
		return "fork"
	case KindJoin:
		return "join"
	default:
		return "unknown"
	}
}

// ID addresses a Node within a Graph's arena. Nil is the terminal "no next
// node" value, valid in any Graph.
type ID int

// Nil is the terminal node id: "plan ends here".
const Nil ID = -1

// Node is one step of a plan. Action nodes carry a grounded Instruction and
// a single successor; Fork nodes carry parallel branches that must all reach
// the same Join before the plan continues past it.
type Node struct {
	Kind        Kind
	Instruction task.Instruction // KindAction only
	LoopID      string           // KindAction only: state-sensitive loop-detection id (task id, path, structural state hash, target) -- distinct from Instruction.ID, which is state-independent and may legitimately repeat along a root-to-leaf path toward a fixed goal.
	Next        ID               // KindAction, KindJoin
	Branches    []ID             // KindFork only
	Join        ID               // KindFork only: the join all branches feed into
}

// Graph is an arena of plan nodes built by the planner and walked by the
// runtime. The zero value is an empty, ready-to-use graph.
type Graph struct {
	nodes []Node
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{}
}

func (g *Graph) push(n Node) ID {
	g.nodes = append(g.nodes, n)
	return ID(len(g.nodes) - 1)
}

// AddAction appends an action node wrapping instr, chained to next. loopID
// is the state-sensitive node id used to detect loops/duplication along a
// single root-to-leaf path (see Node.LoopID); callers that don't care about
// loop detection (e.g. tests building a chain by hand) may pass instr.ID.
func (g *Graph) AddAction(instr task.Instruction, loopID string, next ID) ID {
	return g.push(Node{Kind: KindAction, Instruction: instr, LoopID: loopID, Next: next})
}

// AddJoin appends a join node chained to next.
func (g *Graph) AddJoin(next ID) ID {
	return g.push(Node{Kind: KindJoin, Next: next})
}

// AddFork appends a fork node with the given branches, all of which must
// lead to join.
func (g *Graph) AddFork(branches []ID, join ID) ID {
	bs := make([]ID, len(branches))
	copy(bs, branches)
	return g.push(Node{Kind: KindFork, Branches: bs, Join: join})
}

// Node returns the node stored at id. Callers must not mutate Branches.
func (g *Graph) Node(id ID) Node {
	return g.nodes[id]
}

// Len returns the number of nodes in the arena, including any left behind
// by abandoned search attempts and no longer reachable from the plan's
// entry point.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Walk visits every node reachable from start exactly once, depth-first,
// fork branches visited in order before their join. visit returning false
// stops the walk early.
func (g *Graph) Walk(start ID, visit func(ID, Node) bool) {
	seen := make(map[ID]bool)
	g.walk(start, seen, visit)
}

func (g *Graph) walk(id ID, seen map[ID]bool, visit func(ID, Node) bool) bool {
	if id == Nil || seen[id] {
		return true
	}
	seen[id] = true
	n := g.Node(id)
	if !visit(id, n) {
		return false
	}
	switch n.Kind {
	case KindAction:
		return g.walk(n.Next, seen, visit)
	case KindJoin:
		return g.walk(n.Next, seen, visit)
	case KindFork:
		// Hold the join back so no branch walks past it before the others.
		joinSeen := seen[n.Join]
		seen[n.Join] = true
		for _, b := range n.Branches {
			if !g.walk(b, seen, visit) {
				return false
			}
		}
		seen[n.Join] = joinSeen
		return g.walk(n.Join, seen, visit)
	}
	return true
}

// Reduce folds over every node reachable from start in walk order,
// threading acc through each visit.
func Reduce[T any](g *Graph, start ID, acc T, fn func(T, ID, Node) T) T {
	g.Walk(start, func(id ID, n Node) bool {
		acc = fn(acc, id, n)
		return true
	})
	return acc
}

// Actions returns the grounded instructions of every action node reachable
// from start, in walk order.
func (g *Graph) Actions(start ID) []task.Instruction {
	return Reduce(g, start, []task.Instruction(nil), func(acc []task.Instruction, _ ID, n Node) []task.Instruction {
		if n.Kind == KindAction {
			acc = append(acc, n.Instruction)
		}
		return acc
	})
}

// Retarget rewires every node reachable from head whose trailing edge is
// still Nil (an action or join node awaiting its continuation) to point at
// to instead. The planner builds each plan fragment with its tail left as
// Nil and retargets it once the fragment that follows is known — this is
// the arena's answer to "backtracking is O(1)": extending a plan is a
// single slice write, never a copy of everything built so far.
func (g *Graph) Retarget(head ID, to ID) {
	g.retarget(head, to, make(map[ID]bool))
}

func (g *Graph) retarget(id ID, to ID, seen map[ID]bool) {
	if id == Nil || seen[id] {
		return
	}
	seen[id] = true
	n := g.nodes[id]
	switch n.Kind {
	case KindAction, KindJoin:
		if n.Next == Nil {
			g.nodes[id].Next = to
		} else {
			g.retarget(n.Next, to, seen)
		}
	case KindFork:
		if n.Join == Nil {
			g.nodes[id].Join = to
		} else {
			g.retarget(n.Join, to, seen)
		}
	}
}

// Reverse builds a new graph with a single action/join chain reachable from
// start walked in the opposite order, returning the new entry id. This is a
// structural utility for simple (fork-free) chains only — trace rendering
// and tests that want "what would this look like walked backwards" — since
// reversing a Fork/Join pair requires swapping their roles (a join's many
// incoming edges become many outgoing ones) and callers needing that are
// better served building the plan in forward order directly, as the
// planner does via Retarget rather than by reversing its own output.
func (g *Graph) Reverse(start ID) (*Graph, ID) {
	out := New()
	var chain []Node
	g.Walk(start, func(_ ID, n Node) bool {
		if n.Kind == KindFork {
			return true
		}
		chain = append(chain, n)
		return true
	})
	next := Nil
	for i := 0; i < len(chain); i++ {
		n := chain[i]
		n.Next = next
		next = out.push(n)
	}
	return out, next
}

// String renders the plan reachable from start as an indented outline,
// primarily for test failure output and debug logging.
func (g *Graph) String(start ID) string {
	var b strings.Builder
	g.stringify(&b, start, 0)
	return b.String()
}

func (g *Graph) stringify(b *strings.Builder, id ID, depth int) {
	if id == Nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	n := g.Node(id)
	switch n.Kind {
	case KindAction:
		fmt.Fprintf(b, "%s#%d action %s\n", indent, id, n.Instruction.Description())
		g.stringify(b, n.Next, depth)
	case KindJoin:
		fmt.Fprintf(b, "%s#%d join\n", indent, id)
		g.stringify(b, n.Next, depth)
	case KindFork:
		fmt.Fprintf(b, "%s#%d fork\n", indent, id)
		for _, branch := range n.Branches {
			g.stringify(b, branch, depth+1)
		}
		g.stringify(b, n.Join, depth)
	}
}

// Validate walks the plan reachable from start and reports the first
// violation of the plan DAG invariants: every fork has at least one branch,
// every branch eventually reaches the fork's join, and no action repeats
// along any single root-to-leaf path. Dedup is on each action node's
// state-sensitive LoopID, not on Instruction.ID, which is
// state-independent and legitimately repeats along a path whenever the
// same grounded task is reapplied toward a fixed goal.
func Validate(g *Graph, start ID) error {
	return validate(g, start, map[string]bool{})
}

func validate(g *Graph, id ID, seenActions map[string]bool) error {
	if id == Nil {
		return nil
	}
	n := g.Node(id)
	switch n.Kind {
	case KindAction:
		if seenActions[n.LoopID] {
			return fmt.Errorf("dag: action %s repeats along a single path", n.Instruction.Description())
		}
		next := cloneSeen(seenActions)
		next[n.LoopID] = true
		return validate(g, n.Next, next)
	case KindJoin:
		return validate(g, n.Next, seenActions)
	case KindFork:
		if len(n.Branches) == 0 {
			return fmt.Errorf("dag: fork #%d has no branches", id)
		}
		for _, b := range n.Branches {
			cur := b
			for cur != Nil && cur != n.Join {
				if c := g.Node(cur); c.Kind == KindFork {
					cur = c.Join
				} else {
					cur = c.Next
				}
			}
			if cur != n.Join {
				return fmt.Errorf("dag: branch #%d of fork #%d does not reach its join", b, id)
			}
			if err := validate(g, b, cloneSeen(seenActions)); err != nil {
				return err
			}
		}
		return validate(g, n.Join, seenActions)
	}
	return nil
}

func cloneSeen(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
