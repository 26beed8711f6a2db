package store

import genpkg "voxelinteract.ai/internal/sim/world/terrain/gen"

// BlockAt is the generated block id at a world voxel, before any edits.
func (g WorldGen) BlockAt(x, y, z int) uint16 {
	if !g.Generate {
		return g.Air
	}
	h := genpkg.HeightAt(g.Seed, x, z, g.BaseHeight, g.Amplitude, g.RegionSize)
	switch {
	case y > h:
		if y <= g.SeaLevel {
			return g.Water
		}
		return g.Air
	case y == h:
		if h <= g.SeaLevel+1 {
			return g.Sand
		}
		return g.Grass
	case y >= h-3:
		return g.Dirt
	default:
		return g.Stone
	}
}

func (s *ChunkStore) GenerateChunk(ch *Chunk) {
	if !s.Gen.Generate {
		return
	}
	for y := 0; y < ChunkSize; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				wx := ch.CX*ChunkSize + x
				wy := ch.CY*ChunkSize + y
				wz := ch.CZ*ChunkSize + z
				ch.Voxels[ch.index(x, y, z)] = uint32(s.Gen.BlockAt(wx, wy, wz))
			}
		}
	}
}
