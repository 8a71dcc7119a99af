package progress

import (
	"fmt"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"
)

// Snapshot is a point-in-time readout of an in-progress engine run. It
// mirrors the identically-shaped Snapshot types the factored and unfactored
// engines define; cmd/uctbench copies either one into this type field by
// field.
type Snapshot struct {
	NumNodes       int
	CumulativeCost int
	LastChoice     string
	Outcome        string
}

// SnapshotView renders a run's live Snapshot stream as four text fields the
// client-side script patches in place, the same textContent-patching idiom
// the teacher's views use.
type SnapshotView struct {
	id      string
	updates <-chan []EleUpdate
}

// NewSnapshotView wires snapshots into a view-update stream; it stops
// emitting once done closes or snapshots is exhausted.
func NewSnapshotView(done <-chan struct{}, snapshots <-chan Snapshot) *SnapshotView {
	v := &SnapshotView{id: "uct-run"}
	v.updates = channerics.Convert(done, snapshots, v.onUpdate)
	return v
}

func (v *SnapshotView) Updates() <-chan []EleUpdate {
	return v.updates
}

func (v *SnapshotView) onUpdate(s Snapshot) []EleUpdate {
	return []EleUpdate{
		{EleId: v.id + "-num-nodes", Ops: []Op{{Key: "textContent", Value: fmt.Sprintf("%d", s.NumNodes)}}},
		{EleId: v.id + "-cumulative-cost", Ops: []Op{{Key: "textContent", Value: fmt.Sprintf("%d", s.CumulativeCost)}}},
		{EleId: v.id + "-last-choice", Ops: []Op{{Key: "textContent", Value: s.LastChoice}}},
		{EleId: v.id + "-outcome", Ops: []Op{{Key: "textContent", Value: s.Outcome}}},
	}
}

// Parse defines the view's fragment: four labeled fields plus the bootstrap
// script's insertion points, by element id.
func (v *SnapshotView) Parse(t *template.Template) (name string, err error) {
	name = v.id
	_, err = t.Parse(`{{ define "` + name + `" }}
		<div id="` + v.id + `">
			<p>nodes: <span id="` + v.id + `-num-nodes">0</span></p>
			<p>cost: <span id="` + v.id + `-cumulative-cost">0</span></p>
			<p>last choice: <span id="` + v.id + `-last-choice"></span></p>
			<p>outcome: <span id="` + v.id + `-outcome">running</span></p>
		</div>
	{{ end }}`)
	return
}
