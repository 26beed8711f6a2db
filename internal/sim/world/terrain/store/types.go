package store

import (
	"crypto/sha256"
	"encoding/binary"
)

// ChunkSize is the edge length of a cubic chunk.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

type ChunkKey struct {
	CX int
	CY int
	CZ int
}

type Chunk struct {
	CX, CY, CZ int
	Voxels     []uint32 // len = 16^3, packed id + rotation

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) uint32 {
	return c.Voxels[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, v uint32) {
	i := c.index(x, y, z)
	if c.Voxels[i] == v {
		return
	}
	c.Voxels[i] = v
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [4]byte
		for _, v := range c.Voxels {
			binary.LittleEndian.PutUint32(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// WorldGen parameterises lazily generated terrain. With Generate unset every
// unloaded voxel is air.
type WorldGen struct {
	Seed       int64
	Generate   bool
	BaseHeight int
	Amplitude  int
	SeaLevel   int
	RegionSize int

	Air   uint16
	Stone uint16
	Dirt  uint16
	Grass uint16
	Sand  uint16
	Water uint16
}

type ChunkStore struct {
	Gen    WorldGen
	Chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	return &ChunkStore{
		Gen:    gen,
		Chunks: map[ChunkKey]*Chunk{},
	}
}
