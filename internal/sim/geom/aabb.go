package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned box. Block collision boxes are expressed in
// voxel-local space where the full cube spans [0,1] on every axis.
type AABB struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// FullCube is the unit voxel.
var FullCube = AABB{MaxX: 1, MaxY: 1, MaxZ: 1}

func AABBFromArray(a [6]float64) AABB {
	return AABB{MinX: a[0], MinY: a[1], MinZ: a[2], MaxX: a[3], MaxY: a[4], MaxZ: a[5]}
}

func (b AABB) ToArray() [6]float64 {
	return [6]float64{b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ}
}

func (b AABB) Width() float64  { return b.MaxX - b.MinX }
func (b AABB) Height() float64 { return b.MaxY - b.MinY }
func (b AABB) Depth() float64  { return b.MaxZ - b.MinZ }

func (b AABB) Min() mgl64.Vec3  { return mgl64.Vec3{b.MinX, b.MinY, b.MinZ} }
func (b AABB) Max() mgl64.Vec3  { return mgl64.Vec3{b.MaxX, b.MaxY, b.MaxZ} }
func (b AABB) Size() mgl64.Vec3 { return mgl64.Vec3{b.Width(), b.Height(), b.Depth()} }

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MinZ: math.Min(b.MinZ, o.MinZ),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
		MaxZ: math.Max(b.MaxZ, o.MaxZ),
	}
}

// Translate moves the box by a voxel offset.
func (b AABB) Translate(v Vec3i) AABB {
	dx, dy, dz := float64(v.X), float64(v.Y), float64(v.Z)
	return AABB{
		MinX: b.MinX + dx, MinY: b.MinY + dy, MinZ: b.MinZ + dz,
		MaxX: b.MaxX + dx, MaxY: b.MaxY + dy, MaxZ: b.MaxZ + dz,
	}
}

func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] > b.MinX && p[0] < b.MaxX &&
		p[1] > b.MinY && p[1] < b.MaxY &&
		p[2] > b.MinZ && p[2] < b.MaxZ
}

// Empty reports whether the box has no volume.
func (b AABB) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY || b.MaxZ <= b.MinZ
}
