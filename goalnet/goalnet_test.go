package goalnet

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGoalNetworkBasics(t *testing.T) {
	Convey("Given a fresh goal network", t, func() {
		g := New()

		Convey("It starts empty", func() {
			So(g.IsEmpty(), ShouldBeTrue)
			So(g.Network(), ShouldBeEmpty)
		})

		Convey("A single vertex is unconstrained and releasable", func() {
			v := g.AddVertex(Subgoal{Expr: "at(goal)"})
			So(g.GetUnconstrained(), ShouldResemble, []VertexID{v})

			err := g.Release(v)
			So(err, ShouldBeNil)
			So(g.IsEmpty(), ShouldBeTrue)
		})

		Convey("A vertex with a predecessor is not unconstrained and cannot be released", func() {
			a := g.AddVertex(Subgoal{Expr: "a"})
			b := g.AddVertex(Subgoal{Expr: "b"})
			g.AddEdge(a, b)

			So(g.GetUnconstrained(), ShouldResemble, []VertexID{a})
			So(g.Release(b), ShouldEqual, ErrHasPredecessors)

			So(g.Release(a), ShouldBeNil)
			So(g.GetUnconstrained(), ShouldResemble, []VertexID{b})
		})
	})
}

func TestGoalNetworkDecompose(t *testing.T) {
	Convey("Given a goal network with a single composite subgoal and a predecessor/successor", t, func() {
		g := New()
		before := g.AddVertex(Subgoal{Expr: "before"})
		target := g.AddVertex(Subgoal{Expr: "G"})
		after := g.AddVertex(Subgoal{Expr: "after"})
		g.AddEdge(before, target)
		g.AddEdge(target, after)

		Convey("Decomposing target splices the sub-network's roots/leaves onto its edges", func() {
			sub := New()
			a := sub.AddVertex(Subgoal{Expr: "at(a)"})
			b := sub.AddVertex(Subgoal{Expr: "at(b)"})
			sub.AddEdge(a, b)

			err := g.Decompose(sub, target)
			So(err, ShouldBeNil)

			// target is gone, before/after remain, plus the two spliced vertices.
			So(len(g.Network()), ShouldEqual, 4)

			unconstrained := g.GetUnconstrained()
			So(unconstrained, ShouldResemble, []VertexID{before})

			So(g.Release(before), ShouldBeNil)
			// Exactly one of the spliced vertices (the sub-network root "at(a)") is now unconstrained.
			next := g.GetUnconstrained()
			So(len(next), ShouldEqual, 1)
			So(g.Subgoal(next[0]).Expr, ShouldEqual, "at(a)")
		})

		Convey("Decomposing an absent vertex errors", func() {
			sub := New()
			err := g.Decompose(sub, VertexID(9999))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGoalNetworkCopyIndependence(t *testing.T) {
	Convey("Given a network and its copy", t, func() {
		g := New()
		v := g.AddVertex(Subgoal{Expr: "at(goal)"})
		clone := g.Copy()

		Convey("Releasing in the original does not affect the clone", func() {
			So(g.Release(v), ShouldBeNil)
			So(g.IsEmpty(), ShouldBeTrue)
			So(clone.IsEmpty(), ShouldBeFalse)
		})

		Convey("Both branches share the id counter so further vertices never collide", func() {
			w1 := g.AddVertex(Subgoal{Expr: "w1"})
			w2 := clone.AddVertex(Subgoal{Expr: "w2"})
			So(w1, ShouldNotEqual, w2)
		})
	})
}

func TestGoalNetworkKey(t *testing.T) {
	Convey("Two structurally identical networks with different vertex ids hash identically", t, func() {
		g1 := New()
		a1 := g1.AddVertex(Subgoal{Expr: "a"})
		b1 := g1.AddVertex(Subgoal{Expr: "b"})
		g1.AddEdge(a1, b1)

		g2 := New()
		// Burn an id so g2's vertex ids differ from g1's.
		junk := g2.AddVertex(Subgoal{Expr: "junk"})
		_ = g2.Release(junk)
		a2 := g2.AddVertex(Subgoal{Expr: "a"})
		b2 := g2.AddVertex(Subgoal{Expr: "b"})
		g2.AddEdge(a2, b2)

		So(g1.Key(), ShouldEqual, g2.Key())

		Convey("A structurally different network hashes differently", func() {
			g3 := New()
			x := g3.AddVertex(Subgoal{Expr: "a"})
			y := g3.AddVertex(Subgoal{Expr: "b"})
			g3.AddEdge(y, x) // reversed edge direction
			So(g3.Key(), ShouldNotEqual, g1.Key())
		})
	})
}
