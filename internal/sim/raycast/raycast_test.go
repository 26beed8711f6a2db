package raycast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"voxelinteract.ai/internal/sim/geom"
)

type grid map[geom.Vec3i][]geom.AABB

func (g grid) boxes(x, y, z int) []geom.AABB { return g[geom.Vec3i{X: x, Y: y, Z: z}] }

func TestCastHitsTopFace(t *testing.T) {
	g := grid{{}: {geom.FullCube}}
	hit, ok := Cast(g.boxes, mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{0, -1, 0}, 32)
	if !ok {
		t.Fatalf("expected hit")
	}
	if hit.Voxel != (geom.Vec3i{}) {
		t.Fatalf("voxel = %+v", hit.Voxel)
	}
	if hit.Normal != (geom.Vec3i{Y: 1}) {
		t.Fatalf("normal = %+v", hit.Normal)
	}
	if math.Abs(hit.Distance-0.5) > 1e-9 || !nearVec(hit.Point, mgl64.Vec3{0.5, 1, 0.5}) {
		t.Fatalf("unexpected point %v at %v", hit.Point, hit.Distance)
	}
}

func TestCastAllSixNormals(t *testing.T) {
	g := grid{{}: {geom.FullCube}}
	cases := []struct {
		origin mgl64.Vec3
		dir    mgl64.Vec3
		normal geom.Vec3i
	}{
		{mgl64.Vec3{3.5, 0.5, 0.5}, mgl64.Vec3{-1, 0, 0}, geom.Vec3i{X: 1}},
		{mgl64.Vec3{-2.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, geom.Vec3i{X: -1}},
		{mgl64.Vec3{0.5, 3.5, 0.5}, mgl64.Vec3{0, -1, 0}, geom.Vec3i{Y: 1}},
		{mgl64.Vec3{0.5, -2.5, 0.5}, mgl64.Vec3{0, 1, 0}, geom.Vec3i{Y: -1}},
		{mgl64.Vec3{0.5, 0.5, 3.5}, mgl64.Vec3{0, 0, -1}, geom.Vec3i{Z: 1}},
		{mgl64.Vec3{0.5, 0.5, -2.5}, mgl64.Vec3{0, 0, 1}, geom.Vec3i{Z: -1}},
	}
	for _, c := range cases {
		hit, ok := Cast(g.boxes, c.origin, c.dir, 10)
		if !ok {
			t.Fatalf("from %v: expected hit", c.origin)
		}
		if hit.Normal != c.normal {
			t.Fatalf("from %v: normal %+v, want %+v", c.origin, hit.Normal, c.normal)
		}
	}
}

func TestCastRespectsReach(t *testing.T) {
	g := grid{{}: {geom.FullCube}}
	if _, ok := Cast(g.boxes, mgl64.Vec3{0.5, 5.5, 0.5}, mgl64.Vec3{0, -1, 0}, 4); ok {
		t.Fatalf("hit beyond reach")
	}
	if _, ok := Cast(g.boxes, mgl64.Vec3{0.5, 1.0001, 0.5}, mgl64.Vec3{0, -1, 0}, 0); ok {
		t.Fatalf("zero reach must never hit")
	}
	if _, ok := Cast(g.boxes, mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{}, 10); ok {
		t.Fatalf("zero direction must never hit")
	}
}

func TestCastPartialBox(t *testing.T) {
	slab := geom.AABB{MaxX: 1, MaxY: 0.5, MaxZ: 1}
	g := grid{{}: {slab}}

	hit, ok := Cast(g.boxes, mgl64.Vec3{0.5, 2, 0.5}, mgl64.Vec3{0, -1, 0}, 10)
	if !ok || math.Abs(hit.Point[1]-0.5) > 1e-9 {
		t.Fatalf("expected slab top at y=0.5, got ok=%v %v", ok, hit.Point)
	}

	// Passing over the slab through the empty upper half misses.
	if _, ok := Cast(g.boxes, mgl64.Vec3{-1, 0.75, 0.5}, mgl64.Vec3{1, 0, 0}, 10); ok {
		t.Fatalf("expected miss above the slab")
	}
}

func TestCastNearestOfSeveral(t *testing.T) {
	g := grid{
		{Z: 2}: {geom.FullCube},
		{Z: 5}: {geom.FullCube},
	}
	hit, ok := Cast(g.boxes, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 0, 1}, 10)
	if !ok || hit.Voxel != (geom.Vec3i{Z: 2}) {
		t.Fatalf("expected nearest voxel z=2, got ok=%v %+v", ok, hit.Voxel)
	}
}

func TestCastIgnoresBoxAroundOrigin(t *testing.T) {
	g := grid{
		{}:     {geom.FullCube},
		{X: 3}: {geom.FullCube},
	}
	hit, ok := Cast(g.boxes, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, 10)
	if !ok || hit.Voxel != (geom.Vec3i{X: 3}) || hit.Normal != (geom.Vec3i{X: -1}) {
		t.Fatalf("expected to skip the enclosing voxel, got ok=%v %+v", ok, hit)
	}
}

func TestCastDiagonal(t *testing.T) {
	g := grid{{X: 2, Y: -2, Z: 0}: {geom.FullCube}}
	dir := mgl64.Vec3{1, -1, 0}
	hit, ok := Cast(g.boxes, mgl64.Vec3{0.5, 0.4, 0.5}, dir, 10)
	if !ok {
		t.Fatalf("expected diagonal hit")
	}
	if hit.Voxel != (geom.Vec3i{X: 2, Y: -2}) {
		t.Fatalf("voxel = %+v", hit.Voxel)
	}
	if hit.Normal != (geom.Vec3i{X: -1}) {
		t.Fatalf("normal = %+v", hit.Normal)
	}
}

func nearVec(a, b mgl64.Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}
