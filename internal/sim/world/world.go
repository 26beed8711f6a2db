package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/geom"
	"voxelinteract.ai/internal/sim/world/terrain/store"
)

type Config struct {
	ID   string
	Seed int64

	// Terrain generation; when Generate is false the world starts empty.
	Generate   bool
	BaseHeight int
	Amplitude  int
	SeaLevel   int
	RegionSize int
}

// World is an in-memory voxel world. It answers the geometry queries the
// targeting engine needs and accepts edits from hosts and tests.
//
// World is not safe for concurrent use.
type World struct {
	cfg    Config
	cats   *catalogs.Catalogs
	chunks *store.ChunkStore
}

func New(cfg Config, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	gen, err := worldGen(cfg, &cats.Blocks)
	if err != nil {
		return nil, err
	}
	return &World{
		cfg:    cfg,
		cats:   cats,
		chunks: store.NewChunkStore(gen),
	}, nil
}

func worldGen(cfg Config, b *catalogs.BlockCatalog) (store.WorldGen, error) {
	gen := store.WorldGen{
		Seed:       cfg.Seed,
		Generate:   cfg.Generate,
		BaseHeight: cfg.BaseHeight,
		Amplitude:  cfg.Amplitude,
		SeaLevel:   cfg.SeaLevel,
		RegionSize: cfg.RegionSize,
		Air:        catalogs.AirID,
	}
	if !cfg.Generate {
		return gen, nil
	}
	lookup := func(name string) (uint16, error) {
		id, ok := b.Index[name]
		if !ok {
			return 0, fmt.Errorf("world: terrain generation needs block %s", name)
		}
		return id, nil
	}
	var err error
	for _, f := range []struct {
		name string
		dst  *uint16
	}{
		{"STONE", &gen.Stone},
		{"DIRT", &gen.Dirt},
		{"GRASS", &gen.Grass},
		{"SAND", &gen.Sand},
		{"WATER", &gen.Water},
	} {
		if *f.dst, err = lookup(f.name); err != nil {
			return gen, err
		}
	}
	return gen, nil
}

func (w *World) ID() string                   { return w.cfg.ID }
func (w *World) Config() Config               { return w.cfg }
func (w *World) Catalogs() *catalogs.Catalogs { return w.cats }
func (w *World) BlockPalette() []string       { return w.cats.Blocks.Palette }
func (w *World) LoadedChunks() int            { return len(w.chunks.Chunks) }
func (w *World) Voxel(x, y, z int) uint32     { return w.chunks.GetVoxel(x, y, z) }
func (w *World) VoxelID(x, y, z int) uint16   { return store.VoxelID(w.chunks.GetVoxel(x, y, z)) }
func (w *World) IsAir(x, y, z int) bool       { return w.VoxelID(x, y, z) == catalogs.AirID }

func (w *World) SetVoxel(x, y, z int, id uint16) {
	w.SetVoxelRotated(x, y, z, id, geom.Rotation{})
}

func (w *World) VoxelRotation(x, y, z int) geom.Rotation {
	return store.VoxelRotation(w.chunks.GetVoxel(x, y, z))
}

// BlockAt returns the definition of the block at a voxel, nil if the stored
// id is not in the palette.
func (w *World) BlockAt(x, y, z int) *catalogs.BlockDef {
	return w.cats.Blocks.Def(w.VoxelID(x, y, z))
}

// CollisionBoxes returns the rotated, voxel-local collision boxes at a voxel.
// Air yields none, as do fluids when ignoreFluid is set. The returned slice
// must not be modified.
func (w *World) CollisionBoxes(x, y, z int, ignoreFluid bool) []geom.AABB {
	v := w.chunks.GetVoxel(x, y, z)
	id := store.VoxelID(v)
	if id == catalogs.AirID {
		return nil
	}
	def := w.cats.Blocks.Def(id)
	if def == nil || (ignoreFluid && def.Fluid) {
		return nil
	}
	rot := store.VoxelRotation(v)
	if rot.Identity() {
		return def.CollisionBoxes
	}
	out := make([]geom.AABB, len(def.CollisionBoxes))
	for i, b := range def.CollisionBoxes {
		out[i] = rot.RotateAABB(b)
	}
	return out
}

func (w *World) SetVoxelRotated(x, y, z int, id uint16, rot geom.Rotation) {
	w.chunks.SetVoxel(x, y, z, store.PackVoxel(id, rot))
}

// SetBlock places a named block. Rotation is dropped for blocks that are not
// rotatable, and the yaw for blocks that are not y-rotatable.
func (w *World) SetBlock(x, y, z int, name string, rot geom.Rotation) error {
	id, ok := w.cats.Blocks.Index[name]
	if !ok {
		return fmt.Errorf("unknown block %q", name)
	}
	if !rot.Face.Valid() {
		return fmt.Errorf("invalid face rotation %d", rot.Face)
	}
	def := w.cats.Blocks.Def(id)
	if !def.Rotatable {
		rot = geom.Rotation{}
	} else if !def.YRotatable {
		rot.YSegment = 0
	}
	w.SetVoxelRotated(x, y, z, id, rot)
	return nil
}

// Fill sets every voxel in the inclusive box [min,max] to id.
func (w *World) Fill(min, max geom.Vec3i, id uint16) {
	for y := min.Y; y <= max.Y; y++ {
		for z := min.Z; z <= max.Z; z++ {
			for x := min.X; x <= max.X; x++ {
				w.SetVoxel(x, y, z, id)
			}
		}
	}
}

// StateDigest hashes the loaded chunks in key order.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(w.cfg.Seed))
	h.Write(tmp[:])
	for _, k := range w.chunks.LoadedChunkKeys() {
		for _, c := range []int{k.CX, k.CY, k.CZ} {
			binary.LittleEndian.PutUint64(tmp[:], uint64(int64(c)))
			h.Write(tmp[:])
		}
		d := w.chunks.Chunks[k].Digest()
		h.Write(d[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
