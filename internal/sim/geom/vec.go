package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3i is an integer voxel coordinate.
type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func Vec3iFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

// Vec returns the voxel's min corner in world space.
func (v Vec3i) Vec() mgl64.Vec3 { return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)} }

// Center returns the world-space centre of the voxel.
func (v Vec3i) Center() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X) + 0.5, float64(v.Y) + 0.5, float64(v.Z) + 0.5}
}

// VoxelOf maps a world-space point to the voxel containing it.
func VoxelOf(p mgl64.Vec3) Vec3i {
	return Vec3i{
		X: int(math.Floor(p[0])),
		Y: int(math.Floor(p[1])),
		Z: int(math.Floor(p[2])),
	}
}

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
