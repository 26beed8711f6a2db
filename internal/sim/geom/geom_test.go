package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func approxBox(a, b AABB) bool {
	x, y := a.ToArray(), b.ToArray()
	for i := range x {
		if math.Abs(x[i]-y[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestVoxelOfFloorsNegative(t *testing.T) {
	got := VoxelOf(mgl64.Vec3{-0.25, 1.999, 0})
	if got != (Vec3i{X: -1, Y: 1, Z: 0}) {
		t.Fatalf("unexpected voxel: %+v", got)
	}
}

func TestFloorDivMod(t *testing.T) {
	if FloorDiv(-1, 16) != -1 || Mod(-1, 16) != 15 {
		t.Fatalf("FloorDiv/Mod(-1,16) = %d,%d", FloorDiv(-1, 16), Mod(-1, 16))
	}
	if FloorDiv(33, 16) != 2 || Mod(33, 16) != 1 {
		t.Fatalf("FloorDiv/Mod(33,16) = %d,%d", FloorDiv(33, 16), Mod(33, 16))
	}
}

func TestAABBUnionTranslate(t *testing.T) {
	a := AABB{MinX: 0, MinY: 0, MinZ: 0, MaxX: 1, MaxY: 0.5, MaxZ: 1}
	b := AABB{MinX: 0.25, MinY: 0.5, MinZ: 0.25, MaxX: 0.75, MaxY: 1, MaxZ: 0.75}
	u := a.Union(b).Translate(Vec3i{X: 2, Y: -1, Z: 3})
	want := AABB{MinX: 2, MinY: -1, MinZ: 3, MaxX: 3, MaxY: 0, MaxZ: 4}
	if u != want {
		t.Fatalf("union = %+v, want %+v", u, want)
	}
	if u.Width() != 1 || u.Height() != 1 || u.Depth() != 1 {
		t.Fatalf("unexpected extents %v", u.Size())
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{-math.Pi / 2, 1.5 * math.Pi},
		{TwoPi, 0},
		{5 * math.Pi, math.Pi},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCircularDistanceWraps(t *testing.T) {
	if d := CircularDistance(0.1, TwoPi-0.1); math.Abs(d-0.2) > 1e-12 {
		t.Fatalf("expected wrap-around distance 0.2, got %v", d)
	}
	if d := CircularDistance(0, math.Pi); math.Abs(d-math.Pi) > 1e-12 {
		t.Fatalf("expected pi, got %v", d)
	}
}

func TestYRotTable(t *testing.T) {
	if len(YRotTable) != YRotSegments {
		t.Fatalf("table size %d", len(YRotTable))
	}
	for i, e := range YRotTable {
		if e.ID != i {
			t.Fatalf("entry %d has id %d", i, e.ID)
		}
		if i > 0 && e.Angle <= YRotTable[i-1].Angle {
			t.Fatalf("table not ascending at %d", i)
		}
	}
}

func TestRotateAABBFaces(t *testing.T) {
	slab := AABB{MaxX: 1, MaxY: 0.5, MaxZ: 1}
	cases := []struct {
		face FaceRotation
		want AABB
	}{
		{PY, slab},
		{NY, AABB{MinY: 0.5, MaxX: 1, MaxY: 1, MaxZ: 1}},
		{PX, AABB{MaxX: 0.5, MaxY: 1, MaxZ: 1}},
		{NX, AABB{MinX: 0.5, MaxX: 1, MaxY: 1, MaxZ: 1}},
		{PZ, AABB{MaxX: 1, MaxY: 1, MaxZ: 0.5}},
		{NZ, AABB{MinZ: 0.5, MaxX: 1, MaxY: 1, MaxZ: 1}},
	}
	for _, c := range cases {
		got := Rotation{Face: c.face}.RotateAABB(slab)
		if !approxBox(got, c.want) {
			t.Errorf("%s: got %+v, want %+v", c.face, got, c.want)
		}
	}
}

func TestRotateAABBFaceNormalMatchesRotation(t *testing.T) {
	// The "top" of a bottom slab ends up on the face the rotation names.
	top := AABB{MinX: 0.25, MinY: 0.75, MinZ: 0.25, MaxX: 0.75, MaxY: 1, MaxZ: 0.75}
	for f := PY; f <= NZ; f++ {
		got := Rotation{Face: f}.RotateAABB(top)
		c := mgl64.Vec3{
			(got.MinX+got.MaxX)/2 - 0.5,
			(got.MinY+got.MaxY)/2 - 0.5,
			(got.MinZ+got.MaxZ)/2 - 0.5,
		}
		n := f.Normal()
		want := mgl64.Vec3{float64(n.X), float64(n.Y), float64(n.Z)}.Mul(0.375)
		if !nearVec(c, want) {
			t.Errorf("%s: centre offset %v, want %v", f, c, want)
		}
	}
}

func TestRotateAABBYaw(t *testing.T) {
	b := AABB{MaxX: 0.5, MaxY: 1, MaxZ: 0.25}
	got := Rotation{Face: PY, YSegment: 4}.RotateAABB(b)
	want := AABB{MaxX: 0.25, MaxY: 1, MinZ: 0.5, MaxZ: 1}
	if !approxBox(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	full := Rotation{Face: NZ, YSegment: 4}.RotateAABB(FullCube)
	if !approxBox(full, FullCube) {
		t.Fatalf("full cube must stay a full cube under 90 degree face turns, got %+v", full)
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
