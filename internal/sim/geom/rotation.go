package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FaceRotation names the block face that a block's local +Y is turned towards.
type FaceRotation uint8

const (
	PY FaceRotation = iota
	NY
	PX
	NX
	PZ
	NZ
)

func (f FaceRotation) String() string {
	switch f {
	case PY:
		return "PY"
	case NY:
		return "NY"
	case PX:
		return "PX"
	case NX:
		return "NX"
	case PZ:
		return "PZ"
	case NZ:
		return "NZ"
	default:
		return "INVALID"
	}
}

func (f FaceRotation) Valid() bool { return f <= NZ }

// Normal is the unit direction the face points to.
func (f FaceRotation) Normal() Vec3i {
	switch f {
	case NY:
		return Vec3i{Y: -1}
	case PX:
		return Vec3i{X: 1}
	case NX:
		return Vec3i{X: -1}
	case PZ:
		return Vec3i{Z: 1}
	case NZ:
		return Vec3i{Z: -1}
	default:
		return Vec3i{Y: 1}
	}
}

// YRotSegments is the number of discrete horizontal orientations a block can take.
const YRotSegments = 16

// YRotEntry pairs a yaw angle (radians) with its discrete id.
type YRotEntry struct {
	Angle float64
	ID    int
}

// YRotTable lists the supported yaw orientations in ascending angle order.
var YRotTable = buildYRotTable(YRotSegments)

func buildYRotTable(segments int) []YRotEntry {
	out := make([]YRotEntry, 0, segments)
	for i := 0; i < segments; i++ {
		out = append(out, YRotEntry{Angle: float64(i) / float64(segments) * TwoPi, ID: i})
	}
	return out
}

// YSegmentAngle returns the yaw angle of a discrete segment id.
func YSegmentAngle(seg int) float64 {
	return float64(Mod(seg, YRotSegments)) / YRotSegments * TwoPi
}

// Rotation is the stored orientation of a placed voxel.
type Rotation struct {
	Face     FaceRotation
	YSegment int
}

var voxelCenter = mgl64.Vec3{0.5, 0.5, 0.5}

func (r Rotation) faceMatrix() mgl64.Mat3 {
	switch r.Face {
	case NY:
		return mgl64.Rotate3DX(math.Pi)
	case PX:
		return mgl64.Rotate3DZ(-math.Pi / 2)
	case NX:
		return mgl64.Rotate3DZ(math.Pi / 2)
	case PZ:
		return mgl64.Rotate3DX(math.Pi / 2)
	case NZ:
		return mgl64.Rotate3DX(-math.Pi / 2)
	default:
		return mgl64.Ident3()
	}
}

// Identity reports whether applying r leaves every box unchanged.
func (r Rotation) Identity() bool {
	return r.Face == PY && Mod(r.YSegment, YRotSegments) == 0
}

// RotatePoint rotates a voxel-local point about the voxel centre: yaw first,
// then the face rotation.
func (r Rotation) RotatePoint(p mgl64.Vec3) mgl64.Vec3 {
	m := r.faceMatrix()
	if seg := Mod(r.YSegment, YRotSegments); seg != 0 {
		m = m.Mul3(mgl64.Rotate3DY(YSegmentAngle(seg)))
	}
	out := m.Mul3x1(p.Sub(voxelCenter)).Add(voxelCenter)
	return mgl64.Vec3{snap(out[0]), snap(out[1]), snap(out[2])}
}

// RotateAABB returns the axis-aligned bounds of the rotated box.
func (r Rotation) RotateAABB(b AABB) AABB {
	if r.Identity() {
		return b
	}
	out := AABB{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{b.MinX, b.MinY, b.MinZ}
		if i&1 != 0 {
			c[0] = b.MaxX
		}
		if i&2 != 0 {
			c[1] = b.MaxY
		}
		if i&4 != 0 {
			c[2] = b.MaxZ
		}
		p := r.RotatePoint(c)
		out.MinX = math.Min(out.MinX, p[0])
		out.MinY = math.Min(out.MinY, p[1])
		out.MinZ = math.Min(out.MinZ, p[2])
		out.MaxX = math.Max(out.MaxX, p[0])
		out.MaxY = math.Max(out.MaxY, p[1])
		out.MaxZ = math.Max(out.MaxZ, p[2])
	}
	return out
}

// snap removes trig noise so rotated unit-cube coordinates stay exact.
func snap(v float64) float64 {
	const eps = 1e-9
	if r := math.Round(v); math.Abs(v-r) < eps {
		return r
	}
	return math.Round(v/eps) * eps
}
