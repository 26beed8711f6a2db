package interact

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelinteract.ai/internal/sim/geom"
)

// FaceRotationFor maps a hit normal to the face rotation of a block placed
// against it. The first nonzero axis in x, y, z order decides.
func FaceRotationFor(n geom.Vec3i) geom.FaceRotation {
	switch {
	case n.X > 0:
		return geom.PX
	case n.X < 0:
		return geom.NX
	case n.Y > 0:
		return geom.PY
	case n.Y < 0:
		return geom.NY
	case n.Z > 0:
		return geom.PZ
	case n.Z < 0:
		return geom.NZ
	default:
		return geom.PY
	}
}

// YawAngle returns the facing, in [0,2pi), of a block placed at placement on a
// horizontal face with normal y component ny, seen from agent.
func YawAngle(agent mgl64.Vec3, placement geom.Vec3i, ny int) float64 {
	if ny == 0 {
		return 0
	}
	t := placement.Center()
	vx, vy, vz := agent[0], agent[1], agent[2]
	tx, ty, tz := t[0], t[1], t[2]

	var a float64
	switch {
	case vy >= ty && ny > 0:
		a = math.Atan2(vx-tx, vz-tz)
	case vy >= ty:
		a = math.Atan2(vz-tz, vx-tx)
	case ny > 0:
		a = math.Atan2(tz-vz, tx-vx)
	default:
		a = math.Atan2(tx-vx, tz-vz)
	}
	if ny < 0 {
		a += math.Pi
	}
	return geom.NormalizeAngle(a)
}

// SnapYaw returns the table entry nearest to angle by circular distance.
// On ties the earliest entry wins. An empty table yields the zero entry.
func SnapYaw(angle float64, table []geom.YRotEntry) geom.YRotEntry {
	angle = geom.NormalizeAngle(angle)
	var best geom.YRotEntry
	bestD := math.Inf(1)
	for _, e := range table {
		if d := geom.CircularDistance(angle, e.Angle); d < bestD {
			bestD = d
			best = e
		}
	}
	return best
}

func yawDirection(a float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(a), 0, math.Cos(a)}
}
