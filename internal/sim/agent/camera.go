package agent

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a free-look agent. Angles are radians; yaw 0 faces +Z and a
// positive pitch looks down.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

func (c *Camera) WorldPosition() mgl64.Vec3 { return c.Position }

func (c *Camera) WorldDirection() mgl64.Vec3 {
	return DirectionFromYawPitch(c.Yaw, c.Pitch)
}

// LookAt turns the camera toward p. A zero offset leaves the angles unchanged.
func (c *Camera) LookAt(p mgl64.Vec3) {
	d := p.Sub(c.Position)
	l := d.Len()
	if l == 0 {
		return
	}
	c.Yaw = math.Atan2(-d[0], d[2])
	c.Pitch = -math.Asin(mgl64.Clamp(d[1]/l, -1, 1))
}

func DirectionFromYawPitch(yaw, pitch float64) mgl64.Vec3 {
	cp := math.Cos(pitch)
	return mgl64.Vec3{
		-math.Sin(yaw) * cp,
		-math.Sin(pitch),
		math.Cos(yaw) * cp,
	}
}
