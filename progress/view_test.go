package progress

import (
	"html/template"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotView(t *testing.T) {
	Convey("A snapshot view converts each Snapshot to four labeled EleUpdates", t, func() {
		done := make(chan struct{})
		defer close(done)
		snapshots := make(chan Snapshot, 1)

		view := NewSnapshotView(done, snapshots)
		snapshots <- Snapshot{NumNodes: 3, CumulativeCost: 2, LastChoice: "action:step", Outcome: "SUCCESS"}

		updates := <-view.Updates()
		So(len(updates), ShouldEqual, 4)

		byID := map[string]EleUpdate{}
		for _, u := range updates {
			byID[u.EleId] = u
		}
		So(byID["uct-run-num-nodes"].Ops[0].Value, ShouldEqual, "3")
		So(byID["uct-run-cumulative-cost"].Ops[0].Value, ShouldEqual, "2")
		So(byID["uct-run-last-choice"].Ops[0].Value, ShouldEqual, "action:step")
		So(byID["uct-run-outcome"].Ops[0].Value, ShouldEqual, "SUCCESS")
	})

	Convey("Parse defines a template block named after the view id", t, func() {
		view := NewSnapshotView(make(chan struct{}), make(chan Snapshot))
		t := template.New("root")
		name, err := view.Parse(t)
		So(err, ShouldBeNil)
		So(name, ShouldEqual, "uct-run")
	})
}
