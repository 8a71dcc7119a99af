package simulator

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"phgnuct/goalnet"
)

func TestChoiceKey(t *testing.T) {
	Convey("An action's key encodes its kind and def", t, func() {
		c := Choice{Kind: ActionChoice, Def: "step"}
		So(c.Key(), ShouldEqual, "action:step")
	})

	Convey("Args are appended in order", t, func() {
		c := Choice{Kind: ActionChoice, Def: "move", Args: []string{"x", "y"}}
		So(c.Key(), ShouldEqual, "action:move(x,y)")
	})

	Convey("A method's key includes its bound decomposition target", t, func() {
		c := Choice{Kind: MethodChoice, Def: "M", Target: goalnet.VertexID(7)}
		So(c.Key(), ShouldEqual, "method:M@7")
	})

	Convey("The same method bound to distinct targets produces distinct keys", t, func() {
		a := Choice{Kind: MethodChoice, Def: "M", Target: goalnet.VertexID(1)}
		b := Choice{Kind: MethodChoice, Def: "M", Target: goalnet.VertexID(2)}
		So(a.Key(), ShouldNotEqual, b.Key())
	})
}

func TestChoiceCost(t *testing.T) {
	Convey("Actions cost 1 and methods cost 0", t, func() {
		So(Choice{Kind: ActionChoice}.Cost(), ShouldEqual, 1)
		So(Choice{Kind: MethodChoice}.Cost(), ShouldEqual, 0)
	})
}
