package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "12.snap.zst")
	voxels := make([]uint32, 16*16*16)
	voxels[0] = 3
	voxels[4095] = 0x00410007

	in := SnapshotV1{
		Header:  Header{Version: Version, WorldID: "w1", Tick: 12},
		Seed:    99,
		Gen:     WorldGenV1{Generate: true, BaseHeight: 8, Amplitude: 4, SeaLevel: 6, RegionSize: 32},
		Palette: []string{"AIR", "STONE"},
		Chunks:  []ChunkV1{{CX: -1, CY: 0, CZ: 2, Voxels: voxels}},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header != in.Header || out.Seed != 99 || out.Gen != in.Gen {
		t.Fatalf("header/gen mismatch: %+v", out)
	}
	if len(out.Chunks) != 1 || out.Chunks[0].CX != -1 || out.Chunks[0].CZ != 2 {
		t.Fatalf("chunk mismatch: %+v", out.Chunks)
	}
	if out.Chunks[0].Voxels[0] != 3 || out.Chunks[0].Voxels[4095] != 0x00410007 {
		t.Fatalf("voxel payload mismatch")
	}
}

func TestReadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	if err := WriteSnapshot(path, SnapshotV1{Header: Header{Version: 7}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}
