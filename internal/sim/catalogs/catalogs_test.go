package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"voxelinteract.ai/internal/sim/geom"
)

func TestLoadRepoBlocks(t *testing.T) {
	cats, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	b := cats.Blocks
	if b.Palette[0] != "AIR" || b.Index["AIR"] != AirID {
		t.Fatalf("AIR must be palette id 0, got palette[0]=%q", b.Palette[0])
	}
	if b.PaletteDigest == "" || b.DefsDigest == "" {
		t.Fatalf("missing digests")
	}
	if d := b.Def(AirID); d == nil || len(d.CollisionBoxes) != 0 {
		t.Fatalf("AIR must have no collision boxes")
	}
	stone := b.Def(b.MustID("STONE"))
	if stone == nil || len(stone.CollisionBoxes) != 1 || stone.CollisionBoxes[0] != geom.FullCube {
		t.Fatalf("STONE should default to a full cube, got %+v", stone)
	}
	stairs := b.Def(b.MustID("PLANK_STAIRS"))
	if len(stairs.CollisionBoxes) != 2 || !stairs.YRotatable {
		t.Fatalf("unexpected stairs def: %+v", stairs)
	}
	if b.Def(uint16(len(b.Palette))) != nil {
		t.Fatalf("out of range id must return nil")
	}
}

func TestNewBlockCatalogRequiresAir(t *testing.T) {
	if _, err := NewBlockCatalog([]BlockDef{{ID: "STONE", Solid: true}}); err == nil {
		t.Fatalf("expected error without AIR")
	}
	if _, err := NewBlockCatalog([]BlockDef{{ID: "AIR"}, {ID: "AIR"}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestNewBlockCatalogPaletteOrder(t *testing.T) {
	cat, err := NewBlockCatalog([]BlockDef{{ID: "ZINC"}, {ID: "AIR"}, {ID: "BRICK"}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	want := []string{"AIR", "BRICK", "ZINC"}
	for i, id := range want {
		if cat.Palette[i] != id {
			t.Fatalf("palette[%d] = %q, want %q", i, cat.Palette[i], id)
		}
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown field":  `[{"id":"AIR"},{"id":"STONE","hardness":3}]`,
		"box arity":      `[{"id":"AIR"},{"id":"SLAB","boxes":[[0,0,0,1,0.5]]}]`,
		"box range":      `[{"id":"AIR"},{"id":"SLAB","boxes":[[0,0,0,1,1.5,1]]}]`,
		"lowercase id":   `[{"id":"AIR"},{"id":"stone"}]`,
		"not an array":   `{"id":"AIR"}`,
		"missing air id": `[{"id":"STONE"}]`,
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "blocks.json"), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}
