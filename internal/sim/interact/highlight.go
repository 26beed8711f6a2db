package interact

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"voxelinteract.ai/internal/sim/geom"
)

const outlineWidth = 0.01

// Highlight is the fixed visual construction framing the target. Pieces are
// in the local space of the highlight transform.
type Highlight struct {
	Type    HighlightType
	Color   colorful.Color
	Opacity float64
	Pieces  []geom.AABB
}

// NewHighlight builds the highlight construction described by p.
func NewHighlight(p Params) (Highlight, error) {
	c, err := colorful.Hex(p.HighlightColor)
	if err != nil {
		return Highlight{}, err
	}
	h := Highlight{Type: p.HighlightType, Color: c, Opacity: p.HighlightOpacity}
	switch p.HighlightType {
	case HighlightBox:
		h.Pieces = []geom.AABB{centeredBox(mgl64.Vec3{}, mgl64.Vec3{p.HighlightScale, p.HighlightScale, p.HighlightScale})}
	case HighlightOutline:
		h.Pieces = outlinePieces(p.HighlightScale)
	default:
		return Highlight{}, ErrInvalidHighlightType
	}
	return h, nil
}

// outlinePieces returns the twelve edge bars of a cube of side dim, four
// running along each axis.
func outlinePieces(dim float64) []geom.AABB {
	w := outlineWidth
	off := (dim - w) / 2
	out := make([]geom.AABB, 0, 12)
	for i := -1.0; i <= 1; i += 2 {
		for j := -1.0; j <= 1; j += 2 {
			out = append(out, centeredBox(mgl64.Vec3{0, off * i, off * j}, mgl64.Vec3{dim, w, w}))
		}
	}
	for i := -1.0; i <= 1; i += 2 {
		for j := -1.0; j <= 1; j += 2 {
			out = append(out, centeredBox(mgl64.Vec3{off * j, 0, off * i}, mgl64.Vec3{w, dim, w}))
		}
	}
	for i := -1.0; i <= 1; i += 2 {
		for j := -1.0; j <= 1; j += 2 {
			out = append(out, centeredBox(mgl64.Vec3{off * i, off * j, 0}, mgl64.Vec3{w, w, dim}))
		}
	}
	return out
}

// centeredBox builds a box of the given size around c, shifted to the voxel centre.
func centeredBox(c, size mgl64.Vec3) geom.AABB {
	c = c.Add(mgl64.Vec3{0.5, 0.5, 0.5})
	h := size.Mul(0.5)
	return geom.AABB{
		MinX: c[0] - h[0], MinY: c[1] - h[1], MinZ: c[2] - h[2],
		MaxX: c[0] + h[0], MaxY: c[1] + h[1], MaxZ: c[2] + h[2],
	}
}

// WorldPieces places the pieces with a highlight transform.
func (h Highlight) WorldPieces(t Transform) []geom.AABB {
	out := make([]geom.AABB, len(h.Pieces))
	for i, b := range h.Pieces {
		lo := t.Apply(b.Min())
		hi := t.Apply(b.Max())
		out[i] = geom.AABB{MinX: lo[0], MinY: lo[1], MinZ: lo[2], MaxX: hi[0], MaxY: hi[1], MaxZ: hi[2]}
	}
	return out
}

// Arrow is a direction marker used by the placement visuals.
type Arrow struct {
	Direction mgl64.Vec3
	Visible   bool
}

// PlacementVisuals describe the optional markers drawn at the potential voxel.
type PlacementVisuals struct {
	Enabled  bool
	Position mgl64.Vec3
	Normal   Arrow
	Yaw      Arrow
}
