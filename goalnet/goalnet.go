// Package goalnet implements the goal-task network: a partial-order DAG of
// ground subgoals, mutated by release and decompose as the planner works
// through a plan, and copied whenever a search branch needs its own
// independent progression.
package goalnet

import (
	"fmt"
	"sort"
	"strings"
)

// VertexID identifies a subgoal vertex within a GoalNetwork. IDs are never
// reused, even across copies, so that two structurally identical subgoals
// introduced by different decompositions remain distinct.
type VertexID int64

// Subgoal is a ground logical expression. Identity for planning purposes is
// its VertexID within a network, not its Expr text; Expr is carried for
// satisfaction checks and debug output.
type Subgoal struct {
	Expr string
}

func (s Subgoal) String() string { return s.Expr }

// GoalNetwork is a DAG whose vertices are subgoals and whose edges encode
// "must be achieved before". The zero value is not usable; use New.
type GoalNetwork struct {
	nextID *int64
	labels map[VertexID]Subgoal
	preds  map[VertexID]map[VertexID]struct{}
	succs  map[VertexID]map[VertexID]struct{}
}

// New returns an empty goal network.
func New() *GoalNetwork {
	var seed int64
	return &GoalNetwork{
		nextID: &seed,
		labels: map[VertexID]Subgoal{},
		preds:  map[VertexID]map[VertexID]struct{}{},
		succs:  map[VertexID]map[VertexID]struct{}{},
	}
}

func (g *GoalNetwork) newID() VertexID {
	*g.nextID++
	return VertexID(*g.nextID)
}

// AddVertex inserts a fresh subgoal vertex with no edges and returns its id.
func (g *GoalNetwork) AddVertex(sg Subgoal) VertexID {
	id := g.newID()
	g.labels[id] = sg
	g.preds[id] = map[VertexID]struct{}{}
	g.succs[id] = map[VertexID]struct{}{}
	return id
}

// AddEdge records that v must be achieved before w (v -> w).
func (g *GoalNetwork) AddEdge(v, w VertexID) {
	g.succs[v][w] = struct{}{}
	g.preds[w][v] = struct{}{}
}

// Subgoal returns the label of v.
func (g *GoalNetwork) Subgoal(v VertexID) Subgoal { return g.labels[v] }

// IsEmpty reports whether any vertices remain.
func (g *GoalNetwork) IsEmpty() bool { return len(g.labels) == 0 }

// Network returns all vertex ids, sorted for deterministic iteration.
func (g *GoalNetwork) Network() []VertexID {
	out := make([]VertexID, 0, len(g.labels))
	for v := range g.labels {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Successors returns v's out-neighbors.
func (g *GoalNetwork) Successors(v VertexID) []VertexID {
	return setKeys(g.succs[v])
}

// Predecessors returns v's in-neighbors.
func (g *GoalNetwork) Predecessors(v VertexID) []VertexID {
	return setKeys(g.preds[v])
}

func setKeys(m map[VertexID]struct{}) []VertexID {
	out := make([]VertexID, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetUnconstrained returns the vertices with no predecessor: the frontier of
// what may currently be worked on.
func (g *GoalNetwork) GetUnconstrained() []VertexID {
	var out []VertexID
	for _, v := range g.Network() {
		if len(g.preds[v]) == 0 {
			out = append(out, v)
		}
	}
	return out
}

// ErrHasPredecessors is returned by Release when v still has predecessors.
var ErrHasPredecessors = fmt.Errorf("goalnet: vertex still has predecessors")

// Release removes v. Its out-neighbors whose only remaining predecessor was
// v become unconstrained. Fails if v still has predecessors.
func (g *GoalNetwork) Release(v VertexID) error {
	if len(g.preds[v]) != 0 {
		return ErrHasPredecessors
	}
	for succ := range g.succs[v] {
		delete(g.preds[succ], v)
	}
	delete(g.succs, v)
	delete(g.preds, v)
	delete(g.labels, v)
	return nil
}

// Decompose splices sub in place of v: the roots of sub (vertices with no
// predecessor within sub) inherit v's incoming edges, the leaves of sub
// (vertices with no successor within sub) inherit v's outgoing edges, and v
// is removed. sub's vertices are remapped to fresh ids in g so that they
// remain distinct even when their Expr collides with existing vertices.
func (g *GoalNetwork) Decompose(sub *GoalNetwork, v VertexID) error {
	if _, ok := g.labels[v]; !ok {
		return fmt.Errorf("goalnet: decompose target %d not present", v)
	}

	remap := make(map[VertexID]VertexID, len(sub.labels))
	for _, old := range sub.Network() {
		remap[old] = g.AddVertex(sub.labels[old])
	}
	for _, old := range sub.Network() {
		for succ := range sub.succs[old] {
			g.AddEdge(remap[old], remap[succ])
		}
	}

	preds := g.Predecessors(v)
	succs := g.Successors(v)

	for _, old := range sub.Network() {
		newID := remap[old]
		if len(sub.preds[old]) == 0 {
			for _, p := range preds {
				g.AddEdge(p, newID)
			}
		}
		if len(sub.succs[old]) == 0 {
			for _, s := range succs {
				g.AddEdge(newID, s)
			}
		}
	}

	// sub's roots and leaves now carry v's edges; drop v's own edges and v
	// itself, whether or not v still has predecessors.
	for _, p := range preds {
		delete(g.succs[p], v)
	}
	for _, s := range succs {
		delete(g.preds[s], v)
	}
	delete(g.succs, v)
	delete(g.preds, v)
	delete(g.labels, v)
	return nil
}

// Copy returns an independent deep clone, preserving vertex ids so that
// get_unconstrained/successors agree pointwise with the original until one
// of them is subsequently mutated. The id counter is shared with the
// original so that later decompositions on either branch never collide.
func (g *GoalNetwork) Copy() *GoalNetwork {
	clone := &GoalNetwork{
		nextID: g.nextID,
		labels: make(map[VertexID]Subgoal, len(g.labels)),
		preds:  make(map[VertexID]map[VertexID]struct{}, len(g.preds)),
		succs:  make(map[VertexID]map[VertexID]struct{}, len(g.succs)),
	}
	for v, sg := range g.labels {
		clone.labels[v] = sg
	}
	for v, ps := range g.preds {
		cp := make(map[VertexID]struct{}, len(ps))
		for p := range ps {
			cp[p] = struct{}{}
		}
		clone.preds[v] = cp
	}
	for v, ss := range g.succs {
		cp := make(map[VertexID]struct{}, len(ss))
		for s := range ss {
			cp[s] = struct{}{}
		}
		clone.succs[v] = cp
	}
	return clone
}

// Key returns a canonical structural fingerprint of the network, suitable
// for memoizing on (state, gtn) pairs in the unfactored variant. Two
// networks with the same subgoal/edge shape hash identically regardless of
// vertex-id assignment.
func (g *GoalNetwork) Key() string {
	exprs := make(map[VertexID]string, len(g.labels))
	for v, sg := range g.labels {
		exprs[v] = sg.Expr
	}

	vertices := make([]string, 0, len(g.labels))
	for v := range g.labels {
		vertices = append(vertices, exprs[v])
	}
	sort.Strings(vertices)

	var edges []string
	for v, ss := range g.succs {
		for s := range ss {
			edges = append(edges, exprs[v]+"->"+exprs[s])
		}
	}
	sort.Strings(edges)

	var b strings.Builder
	b.WriteString(strings.Join(vertices, ","))
	b.WriteByte(';')
	b.WriteString(strings.Join(edges, ","))
	return b.String()
}
