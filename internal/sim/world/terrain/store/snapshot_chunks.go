package store

import (
	"fmt"

	snapv1 "voxelinteract.ai/internal/persistence/snapshot"
)

// ExportLoadedChunks converts loaded chunk data into snapshot chunks.
func ExportLoadedChunks(chunks map[ChunkKey]*Chunk, keys []ChunkKey) []snapv1.ChunkV1 {
	out := make([]snapv1.ChunkV1, 0, len(keys))
	for _, k := range keys {
		ch := chunks[k]
		if ch == nil {
			continue
		}
		voxels := make([]uint32, len(ch.Voxels))
		copy(voxels, ch.Voxels)
		out = append(out, snapv1.ChunkV1{
			CX:     k.CX,
			CY:     k.CY,
			CZ:     k.CZ,
			Voxels: voxels,
		})
	}
	return out
}

// ImportChunks rebuilds a chunk store from snapshot chunks.
func ImportChunks(gen WorldGen, chunks []snapv1.ChunkV1) (*ChunkStore, error) {
	store := NewChunkStore(gen)
	for _, ch := range chunks {
		if len(ch.Voxels) != chunkVolume {
			return nil, fmt.Errorf("snapshot chunk voxels length mismatch: got %d want %d", len(ch.Voxels), chunkVolume)
		}
		k := ChunkKey{CX: ch.CX, CY: ch.CY, CZ: ch.CZ}
		if _, dup := store.Chunks[k]; dup {
			return nil, fmt.Errorf("duplicate snapshot chunk %d,%d,%d", k.CX, k.CY, k.CZ)
		}
		voxels := make([]uint32, len(ch.Voxels))
		copy(voxels, ch.Voxels)
		c := &Chunk{
			CX:     ch.CX,
			CY:     ch.CY,
			CZ:     ch.CZ,
			Voxels: voxels,
		}
		_ = c.Digest()
		store.Chunks[k] = c
	}
	return store, nil
}
