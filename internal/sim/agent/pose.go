package agent

import "github.com/go-gl/mathgl/mgl64"

// Pose is a fixed position and direction, used to re-run recorded ticks.
type Pose struct {
	Position  mgl64.Vec3
	Direction mgl64.Vec3
}

func (p *Pose) WorldPosition() mgl64.Vec3  { return p.Position }
func (p *Pose) WorldDirection() mgl64.Vec3 { return p.Direction }
