package world

import (
	"path/filepath"
	"testing"

	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/geom"
)

func loadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newEmptyWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(Config{ID: "test"}, loadCatalogs(t))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func TestCollisionBoxesAirAndSolid(t *testing.T) {
	w := newEmptyWorld(t)
	if boxes := w.CollisionBoxes(0, 0, 0, true); len(boxes) != 0 {
		t.Fatalf("air must have no boxes, got %v", boxes)
	}
	if err := w.SetBlock(0, 0, 0, "STONE", geom.Rotation{}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	boxes := w.CollisionBoxes(0, 0, 0, true)
	if len(boxes) != 1 || boxes[0] != geom.FullCube {
		t.Fatalf("stone boxes = %v", boxes)
	}
	if w.IsAir(0, 0, 0) {
		t.Fatalf("stone reported as air")
	}
}

func TestCollisionBoxesFluid(t *testing.T) {
	w := newEmptyWorld(t)
	if err := w.SetBlock(1, 2, 3, "WATER", geom.Rotation{}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if boxes := w.CollisionBoxes(1, 2, 3, true); len(boxes) != 0 {
		t.Fatalf("fluid must be ignored, got %v", boxes)
	}
	if boxes := w.CollisionBoxes(1, 2, 3, false); len(boxes) != 1 {
		t.Fatalf("fluid must collide when not ignored, got %v", boxes)
	}
}

func TestCollisionBoxesRotated(t *testing.T) {
	w := newEmptyWorld(t)
	if err := w.SetBlock(0, 0, 0, "PLANK_SLAB", geom.Rotation{Face: geom.NY}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	boxes := w.CollisionBoxes(0, 0, 0, true)
	want := geom.AABB{MinY: 0.5, MaxX: 1, MaxY: 1, MaxZ: 1}
	if len(boxes) != 1 || boxes[0] != want {
		t.Fatalf("upside-down slab boxes = %v, want %v", boxes, want)
	}
	if r := w.VoxelRotation(0, 0, 0); r.Face != geom.NY {
		t.Fatalf("rotation = %+v", r)
	}
	// The catalog definition itself is never rotated in place.
	def := w.BlockAt(0, 0, 0)
	if def.CollisionBoxes[0] != (geom.AABB{MaxX: 1, MaxY: 0.5, MaxZ: 1}) {
		t.Fatalf("catalog boxes mutated: %v", def.CollisionBoxes)
	}
}

func TestSetBlockDropsUnsupportedRotation(t *testing.T) {
	w := newEmptyWorld(t)
	if err := w.SetBlock(0, 0, 0, "STONE", geom.Rotation{Face: geom.PX, YSegment: 3}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if r := w.VoxelRotation(0, 0, 0); r != (geom.Rotation{}) {
		t.Fatalf("stone must not keep a rotation, got %+v", r)
	}
	if err := w.SetBlock(0, 1, 0, "LOG", geom.Rotation{Face: geom.PX, YSegment: 3}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if r := w.VoxelRotation(0, 1, 0); r != (geom.Rotation{Face: geom.PX}) {
		t.Fatalf("log keeps face only, got %+v", r)
	}
	if err := w.SetBlock(0, 0, 0, "NOPE", geom.Rotation{}); err == nil {
		t.Fatalf("expected unknown block error")
	}
}

func TestFillAndDigest(t *testing.T) {
	w := newEmptyWorld(t)
	before := w.StateDigest()
	stone := w.Catalogs().Blocks.MustID("STONE")
	w.Fill(geom.Vec3i{X: -1, Y: 0, Z: -1}, geom.Vec3i{X: 1, Y: 0, Z: 1}, stone)
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			if w.VoxelID(x, 0, z) != stone {
				t.Fatalf("fill missed %d,0,%d", x, z)
			}
		}
	}
	if w.StateDigest() == before {
		t.Fatalf("digest did not change after fill")
	}
}

func TestGenerateRequiresTerrainBlocks(t *testing.T) {
	cats := &catalogs.Catalogs{}
	b, err := catalogs.NewBlockCatalog([]catalogs.BlockDef{{ID: "AIR"}, {ID: "STONE"}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cats.Blocks = b
	if _, err := New(Config{Generate: true}, cats); err == nil {
		t.Fatalf("expected error for missing terrain blocks")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cats := loadCatalogs(t)
	w, err := New(Config{ID: "w1", Seed: 5, Generate: true, BaseHeight: 4, Amplitude: 3, SeaLevel: 2, RegionSize: 8}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if err := w.SetBlock(3, 20, -7, "PLANK_STAIRS", geom.Rotation{Face: geom.PZ, YSegment: 12}); err != nil {
		t.Fatalf("set block: %v", err)
	}

	path := filepath.Join(t.TempDir(), "w1.snap.zst")
	if err := snapshot.WriteSnapshot(path, w.ExportSnapshot(40)); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	w2, err := New(Config{ID: "other"}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if err := w2.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	if w2.ID() != "w1" || w2.Config().Seed != 5 {
		t.Fatalf("config not restored: %+v", w2.Config())
	}
	if w2.StateDigest() != w.StateDigest() {
		t.Fatalf("digest mismatch after import")
	}
	if r := w2.VoxelRotation(3, 20, -7); r != (geom.Rotation{Face: geom.PZ, YSegment: 12}) {
		t.Fatalf("rotation = %+v", r)
	}
	// Unloaded terrain still regenerates identically.
	if w2.VoxelID(50, 0, 50) != w.VoxelID(50, 0, 50) {
		t.Fatalf("generated terrain differs after import")
	}

	snap.PaletteDigest = "bogus"
	if err := w2.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected palette mismatch error")
	}
}
