package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelinteract.ai/internal/sim/geom"
)

const epsilon = 1e-9

// BoxesFunc returns the voxel-local collision boxes at an integer voxel.
type BoxesFunc func(x, y, z int) []geom.AABB

// Hit describes the first box surface a ray enters.
type Hit struct {
	Point    mgl64.Vec3
	Voxel    geom.Vec3i // voxel whose box was hit
	Normal   geom.Vec3i // entry face, one of the six axis units
	Distance float64
}

// Cast walks the voxel grid from origin along dir (DDA) and returns the nearest
// box hit within maxDist. Boxes that contain the origin are ignored.
func Cast(boxes BoxesFunc, origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	if boxes == nil || !(maxDist > 0) {
		return Hit{}, false
	}
	l := dir.Len()
	if l < epsilon || math.IsNaN(l) {
		return Hit{}, false
	}
	dir = dir.Mul(1 / l)

	cell := geom.VoxelOf(origin)
	pos := [3]int{cell.X, cell.Y, cell.Z}
	var step [3]int
	tMax := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	tDelta := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > epsilon:
			step[i] = 1
			tMax[i] = (float64(pos[i]+1) - origin[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < -epsilon:
			step[i] = -1
			tMax[i] = (float64(pos[i]) - origin[i]) / dir[i]
			tDelta[i] = -1 / dir[i]
		}
	}

	t := 0.0
	for t <= maxDist {
		v := geom.Vec3i{X: pos[0], Y: pos[1], Z: pos[2]}
		if hit, ok := castVoxel(boxes, v, origin, dir, maxDist); ok {
			return hit, true
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		pos[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
	return Hit{}, false
}

func castVoxel(boxes BoxesFunc, v geom.Vec3i, origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	var best Hit
	found := false
	for _, b := range boxes(v.X, v.Y, v.Z) {
		wb := b.Translate(v)
		if wb.Empty() || wb.Contains(origin) {
			continue
		}
		t, axis, ok := intersect(origin, dir, wb, maxDist)
		if !ok {
			continue
		}
		if found && t >= best.Distance {
			continue
		}
		var n [3]int
		if dir[axis] > 0 {
			n[axis] = -1
		} else {
			n[axis] = 1
		}
		best = Hit{
			Point:    origin.Add(dir.Mul(t)),
			Voxel:    v,
			Normal:   geom.Vec3i{X: n[0], Y: n[1], Z: n[2]},
			Distance: t,
		}
		found = true
	}
	return best, found
}

// intersect is a slab test returning the entry distance and the entry axis.
func intersect(origin, dir mgl64.Vec3, b geom.AABB, maxDist float64) (float64, int, bool) {
	lo := b.Min()
	hi := b.Max()
	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	axis := -1
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < epsilon {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEnter {
			tEnter = t1
			axis = i
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, 0, false
		}
	}
	if axis < 0 || tExit < 0 || tEnter < -epsilon || tEnter > maxDist {
		return 0, 0, false
	}
	if tEnter < 0 {
		tEnter = 0
	}
	return tEnter, axis, true
}
