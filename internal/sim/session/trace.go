package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelinteract.ai/internal/protocol"
	"voxelinteract.ai/internal/sim/interact"
)

// TickTrace is the per-tick record written to the trace log. It carries the
// agent pose so a tick can be re-run.
type TickTrace struct {
	Tick      uint64                 `json:"tick"`
	WorldID   string                 `json:"world_id"`
	Pos       [3]float64             `json:"pos"`
	Dir       [3]float64             `json:"dir"`
	Visible   bool                   `json:"visible"`
	Target    *[3]int                `json:"target,omitempty"`
	Normal    [3]int                 `json:"normal"`
	Potential *protocol.PotentialMsg `json:"potential,omitempty"`
	Changed   bool                   `json:"changed"`
}

func NewTrace(tick uint64, worldID string, pos, dir mgl64.Vec3, snap interact.Snapshot) TickTrace {
	tr := TickTrace{
		Tick:    tick,
		WorldID: worldID,
		Pos:     pos,
		Dir:     dir,
		Visible: snap.Visible,
		Normal:  snap.Normal.ToArray(),
	}
	if snap.Target != nil {
		t := snap.Target.ToArray()
		tr.Target = &t
	}
	tr.Potential = potentialMsg(snap.Potential)
	return tr
}

// SameResult reports whether two traces agree on the engine output.
func (t TickTrace) SameResult(o TickTrace) bool {
	if t.Visible != o.Visible || t.Normal != o.Normal {
		return false
	}
	if (t.Target == nil) != (o.Target == nil) || (t.Target != nil && *t.Target != *o.Target) {
		return false
	}
	if (t.Potential == nil) != (o.Potential == nil) || (t.Potential != nil && *t.Potential != *o.Potential) {
		return false
	}
	return true
}

// TargetMessage converts an engine snapshot to its wire form.
func TargetMessage(tick uint64, snap interact.Snapshot) protocol.TargetMsg {
	msg := protocol.TargetMsg{
		Type:      protocol.TypeTarget,
		Tick:      tick,
		Visible:   snap.Visible,
		Normal:    snap.Normal.ToArray(),
		Potential: potentialMsg(snap.Potential),
		Highlight: protocol.HighlightMsg{
			Position: snap.Transform.Position,
			Scale:    snap.Transform.Scale,
		},
	}
	if snap.Target != nil {
		t := snap.Target.ToArray()
		msg.Target = &t
	}
	msg.Placement = placementMsg(snap)
	return msg
}

// placementMsg is nil unless potential visuals are enabled and a potential exists.
func placementMsg(snap interact.Snapshot) *protocol.PlacementMsg {
	v := snap.Visuals
	if !v.Enabled || snap.Potential == nil || !v.Normal.Visible {
		return nil
	}
	m := &protocol.PlacementMsg{Position: v.Position, Normal: v.Normal.Direction}
	if v.Yaw.Visible {
		yaw := [3]float64(v.Yaw.Direction)
		m.Yaw = &yaw
	}
	return m
}

// HighlightStyle converts the highlight construction to its INIT form.
func HighlightStyle(h interact.Highlight) protocol.HighlightStyleMsg {
	pieces := make([][6]float64, len(h.Pieces))
	for i, b := range h.Pieces {
		pieces[i] = b.ToArray()
	}
	return protocol.HighlightStyleMsg{
		Type:    string(h.Type),
		Color:   h.Color.Hex(),
		Opacity: h.Opacity,
		Pieces:  pieces,
	}
}

func potentialMsg(p *interact.Potential) *protocol.PotentialMsg {
	if p == nil {
		return nil
	}
	return &protocol.PotentialMsg{
		Voxel:     p.Voxel.ToArray(),
		Rotation:  int(p.Rotation),
		YRotation: p.YRotation,
	}
}
