package store

import (
	"sort"

	"voxelinteract.ai/internal/sim/geom"
)

func chunkCoords(x, y, z int) (ChunkKey, int, int, int) {
	k := ChunkKey{
		CX: geom.FloorDiv(x, ChunkSize),
		CY: geom.FloorDiv(y, ChunkSize),
		CZ: geom.FloorDiv(z, ChunkSize),
	}
	return k, geom.Mod(x, ChunkSize), geom.Mod(y, ChunkSize), geom.Mod(z, ChunkSize)
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// GetVoxel reads a packed voxel. Unloaded chunks are answered from the
// generator without materialising them.
func (s *ChunkStore) GetVoxel(x, y, z int) uint32 {
	k, lx, ly, lz := chunkCoords(x, y, z)
	if ch, ok := s.Chunks[k]; ok {
		return ch.Get(lx, ly, lz)
	}
	return PackVoxel(s.Gen.BlockAt(x, y, z), geom.Rotation{})
}

func (s *ChunkStore) SetVoxel(x, y, z int, v uint32) {
	k, lx, ly, lz := chunkCoords(x, y, z)
	ch := s.GetOrGenChunk(k.CX, k.CY, k.CZ)
	ch.Set(lx, ly, lz, v)
}

func (s *ChunkStore) GetOrGenChunk(cx, cy, cz int) *Chunk {
	k := ChunkKey{CX: cx, CY: cy, CZ: cz}
	if ch, ok := s.Chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CY:     cy,
		CZ:     cz,
		Voxels: make([]uint32, chunkVolume),
	}
	s.GenerateChunk(ch)
	ch.dirty = true
	_ = ch.Digest()
	s.Chunks[k] = ch
	return ch
}
