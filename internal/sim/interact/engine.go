package interact

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/geom"
	"voxelinteract.ai/internal/sim/raycast"
)

// Agent is the object the ray starts from.
type Agent interface {
	WorldPosition() mgl64.Vec3
	WorldDirection() mgl64.Vec3
}

// Oracle answers voxel geometry queries. Box lists are voxel-local.
type Oracle interface {
	CollisionBoxes(x, y, z int, ignoreFluid bool) []geom.AABB
	VoxelID(x, y, z int) uint16
	VoxelRotation(x, y, z int) geom.Rotation
	BlockAt(x, y, z int) *catalogs.BlockDef
}

// CastFunc is the ray primitive used by the engine.
type CastFunc func(boxes raycast.BoxesFunc, origin, dir mgl64.Vec3, maxDist float64) (raycast.Hit, bool)

type Potential struct {
	Voxel     geom.Vec3i
	Rotation  geom.FaceRotation
	YRotation int
}

// Transform positions and scales the highlight in world space.
type Transform struct {
	Position mgl64.Vec3
	Scale    mgl64.Vec3
}

func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(mgl64.Vec3{p[0] * t.Scale[0], p[1] * t.Scale[1], p[2] * t.Scale[2]})
}

func (t Transform) lerp(to Transform, f float64) Transform {
	return Transform{
		Position: t.Position.Add(to.Position.Sub(t.Position).Mul(f)),
		Scale:    t.Scale.Add(to.Scale.Sub(t.Scale).Mul(f)),
	}
}

// Engine tracks what one agent is looking at and where it would place a
// block. Update must be called once per tick from a single goroutine.
type Engine struct {
	agent     Agent
	oracle    Oracle
	params    Params
	cast      CastFunc
	highlight Highlight

	visible   bool
	hasTarget bool
	target    geom.Vec3i
	normal    geom.Vec3i
	potential *Potential

	goal      Transform
	transform Transform
	primed    bool

	visuals PlacementVisuals
}

func New(agent Agent, oracle Oracle, p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	h, err := NewHighlight(p)
	if err != nil {
		return nil, err
	}
	return &Engine{
		agent:     agent,
		oracle:    oracle,
		params:    p,
		cast:      raycast.Cast,
		highlight: h,
		visuals:   PlacementVisuals{Enabled: p.PotentialVisuals},
	}, nil
}

// SetCaster replaces the ray primitive.
func (e *Engine) SetCaster(c CastFunc) {
	if c != nil {
		e.cast = c
	}
}

func (e *Engine) Params() Params       { return e.params }
func (e *Engine) Highlight() Highlight { return e.highlight }
func (e *Engine) Visible() bool        { return e.visible }
func (e *Engine) Normal() geom.Vec3i   { return e.normal }
func (e *Engine) Transform() Transform { return e.transform }

func (e *Engine) Target() (geom.Vec3i, bool) { return e.target, e.hasTarget }

func (e *Engine) Potential() *Potential {
	if e.potential == nil {
		return nil
	}
	p := *e.potential
	return &p
}

// LookingAt returns the block definition of the current target.
func (e *Engine) LookingAt() *catalogs.BlockDef {
	if !e.hasTarget {
		return nil
	}
	return e.oracle.BlockAt(e.target.X, e.target.Y, e.target.Z)
}

// Toggle sets visibility, flipping it when force is nil, and clears the
// target and potential. The next visible tick places the highlight without
// interpolation.
func (e *Engine) Toggle(force *bool) {
	if force != nil {
		e.visible = *force
	} else {
		e.visible = !e.visible
	}
	e.clear()
	e.primed = false
}

func (e *Engine) clear() {
	e.hasTarget = false
	e.target = geom.Vec3i{}
	e.normal = geom.Vec3i{}
	e.potential = nil
	e.visuals.Normal.Visible = false
	e.visuals.Yaw.Visible = false
}

func (e *Engine) hide() {
	e.visible = false
	e.clear()
}

func (e *Engine) Update() {
	pos := e.agent.WorldPosition()
	dir := e.agent.WorldDirection()
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	if e.params.InverseDirection {
		dir = dir.Mul(-1)
	}

	ignoreFluid := e.params.IgnoreFluid
	hit, ok := e.cast(func(x, y, z int) []geom.AABB {
		return e.oracle.CollisionBoxes(x, y, z, ignoreFluid)
	}, pos, dir, e.params.ReachDistance)
	if !ok {
		e.hide()
		return
	}
	t := hit.Voxel
	if e.oracle.VoxelID(t.X, t.Y, t.Z) == catalogs.AirID {
		e.hide()
		return
	}

	e.visible = true
	e.hasTarget = true
	e.target = t
	e.normal = hit.Normal
	e.potential = nil

	def := e.oracle.BlockAt(t.X, t.Y, t.Z)
	if def == nil || len(def.CollisionBoxes) == 0 {
		e.smooth()
		e.visuals.Normal.Visible = false
		e.visuals.Yaw.Visible = false
		return
	}
	e.goal = e.highlightGoal(t, def.CollisionBoxes)
	e.smooth()

	placement := t.Add(hit.Normal)
	p := Potential{Voxel: placement, Rotation: FaceRotationFor(hit.Normal)}
	yaw := Arrow{}
	if ny := hit.Normal.Y; ny != 0 {
		entry := SnapYaw(YawAngle(pos, placement, ny), geom.YRotTable)
		p.YRotation = entry.ID
		yaw = Arrow{Direction: yawDirection(entry.Angle), Visible: true}
	}
	e.potential = &p

	// Markers stay hidden unless potential visuals are enabled.
	if !e.visuals.Enabled {
		return
	}
	e.visuals.Position = placement.Center()
	e.visuals.Normal = Arrow{Direction: hit.Normal.Vec(), Visible: true}
	e.visuals.Yaw = yaw
}

// highlightGoal unions the rotated boxes of voxel t into a world-space
// transform scaled by the highlight scale.
func (e *Engine) highlightGoal(t geom.Vec3i, boxes []geom.AABB) Transform {
	rot := e.oracle.VoxelRotation(t.X, t.Y, t.Z)
	u := rot.RotateAABB(boxes[0])
	for _, b := range boxes[1:] {
		u = u.Union(rot.RotateAABB(b))
	}
	u = u.Translate(t)
	return Transform{
		Position: u.Min(),
		Scale:    u.Size().Mul(e.params.HighlightScale),
	}
}

func (e *Engine) smooth() {
	if !e.primed {
		e.transform = e.goal
		e.primed = true
		return
	}
	e.transform = e.transform.lerp(e.goal, e.params.HighlightLerp)
}
