package interact

import "voxelinteract.ai/internal/sim/geom"

// Snapshot is an owned copy of the engine's per-tick output.
type Snapshot struct {
	Visible   bool
	Target    *geom.Vec3i
	Normal    geom.Vec3i
	Potential *Potential
	Transform Transform
	Visuals   PlacementVisuals
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Visible:   e.visible,
		Normal:    e.normal,
		Potential: e.Potential(),
		Transform: e.transform,
		Visuals:   e.visuals,
	}
	if e.hasTarget {
		t := e.target
		s.Target = &t
	}
	return s
}

// SameTarget reports whether two snapshots agree on target and potential.
func (s Snapshot) SameTarget(o Snapshot) bool {
	if s.Visible != o.Visible || s.Normal != o.Normal {
		return false
	}
	if (s.Target == nil) != (o.Target == nil) || (s.Target != nil && *s.Target != *o.Target) {
		return false
	}
	if (s.Potential == nil) != (o.Potential == nil) || (s.Potential != nil && *s.Potential != *o.Potential) {
		return false
	}
	return true
}
