package world

import (
	"fmt"

	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/sim/world/terrain/store"
)

func (w *World) ExportSnapshot(tick uint64) snapshot.SnapshotV1 {
	keys := w.chunks.LoadedChunkKeys()
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    tick,
		},
		Seed: w.cfg.Seed,
		Gen: snapshot.WorldGenV1{
			Generate:   w.cfg.Generate,
			BaseHeight: w.cfg.BaseHeight,
			Amplitude:  w.cfg.Amplitude,
			SeaLevel:   w.cfg.SeaLevel,
			RegionSize: w.cfg.RegionSize,
		},
		Palette:       append([]string(nil), w.cats.Blocks.Palette...),
		PaletteDigest: w.cats.Blocks.PaletteDigest,
		Chunks:        store.ExportLoadedChunks(w.chunks.Chunks, keys),
	}
}

// ImportSnapshot replaces the world's voxels and generation parameters with
// the snapshot's. The snapshot palette must match the loaded catalog.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) error {
	if snap.PaletteDigest != "" && snap.PaletteDigest != w.cats.Blocks.PaletteDigest {
		return fmt.Errorf("snapshot palette digest mismatch: snap=%s catalog=%s", snap.PaletteDigest, w.cats.Blocks.PaletteDigest)
	}
	cfg := w.cfg
	if snap.Header.WorldID != "" {
		cfg.ID = snap.Header.WorldID
	}
	cfg.Seed = snap.Seed
	cfg.Generate = snap.Gen.Generate
	cfg.BaseHeight = snap.Gen.BaseHeight
	cfg.Amplitude = snap.Gen.Amplitude
	cfg.SeaLevel = snap.Gen.SeaLevel
	cfg.RegionSize = snap.Gen.RegionSize

	gen, err := worldGen(cfg, &w.cats.Blocks)
	if err != nil {
		return err
	}
	chunks, err := store.ImportChunks(gen, snap.Chunks)
	if err != nil {
		return err
	}
	w.cfg = cfg
	w.chunks = chunks
	return nil
}
