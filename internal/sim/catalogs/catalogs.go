package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"voxelinteract.ai/internal/sim/geom"
)

// AirID is the palette id reserved for empty space.
const AirID uint16 = 0

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string

	byID []*BlockDef
}

type BlockDef struct {
	ID         string       `json:"id"`
	Solid      bool         `json:"solid,omitempty"`
	Fluid      bool         `json:"fluid,omitempty"`
	Rotatable  bool         `json:"rotatable,omitempty"`
	YRotatable bool         `json:"y_rotatable,omitempty"`
	Boxes      [][6]float64 `json:"boxes,omitempty"`

	// CollisionBoxes are the unrotated voxel-local boxes; empty for AIR.
	CollisionBoxes []geom.AABB `json:"-"`
}

func (d *BlockDef) IsAir() bool { return d.ID == "AIR" }

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateBlocks(raw); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}

	var defs []BlockDef
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	cat, err := NewBlockCatalog(defs)
	if err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	cat.DefsDigest = sha256Hex(raw)
	*out = cat
	return nil
}

// NewBlockCatalog builds a palette from block definitions. AIR must be present
// and always gets palette id 0; the remaining ids follow sorted block ids.
func NewBlockCatalog(defs []BlockDef) (BlockCatalog, error) {
	var out BlockCatalog
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return out, fmt.Errorf("empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return out, fmt.Errorf("duplicate id %q", d.ID)
		}
		d.CollisionBoxes = collisionBoxes(d)
		out.Defs[d.ID] = d
	}

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return out, fmt.Errorf("missing AIR")
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)
	if len(ids) > 1<<16 {
		return out, fmt.Errorf("too many blocks: %d", len(ids))
	}

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	out.byID = make([]*BlockDef, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
		d := out.Defs[id]
		out.byID[i] = &d
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	if out.DefsDigest == "" {
		defsJSON, _ := json.Marshal(defs)
		out.DefsDigest = sha256Hex(defsJSON)
	}
	return out, nil
}

func collisionBoxes(d BlockDef) []geom.AABB {
	if d.IsAir() {
		return nil
	}
	if len(d.Boxes) == 0 {
		return []geom.AABB{geom.FullCube}
	}
	out := make([]geom.AABB, 0, len(d.Boxes))
	for _, b := range d.Boxes {
		out = append(out, geom.AABBFromArray(b))
	}
	return out
}

// Def returns the definition for a palette id, or nil if the id is unknown.
func (c *BlockCatalog) Def(id uint16) *BlockDef {
	if int(id) >= len(c.byID) {
		return nil
	}
	return c.byID[id]
}

// MustID returns the palette id for a block name and panics if it is missing.
func (c *BlockCatalog) MustID(name string) uint16 {
	id, ok := c.Index[name]
	if !ok {
		panic(fmt.Sprintf("catalogs: unknown block %q", name))
	}
	return id
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
