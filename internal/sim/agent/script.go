package agent

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	ScriptStatic = "static"
	ScriptOrbit  = "orbit"
	ScriptSweep  = "sweep"
)

// ScriptConfig drives a camera deterministically from the tick number.
// Angles are degrees.
type ScriptConfig struct {
	Kind     string     `yaml:"kind"`
	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"`
	Pitch    float64    `yaml:"pitch"`

	// orbit
	Center [3]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
	Height float64    `yaml:"height"`

	// orbit and sweep
	PeriodTicks int `yaml:"period_ticks"`

	// sweep
	SweepDegrees float64 `yaml:"sweep_degrees"`
}

func (s ScriptConfig) Validate() error {
	switch s.Kind {
	case ScriptStatic:
	case ScriptOrbit:
		if s.Radius <= 0 {
			return fmt.Errorf("orbit radius must be > 0")
		}
		if s.PeriodTicks <= 0 {
			return fmt.Errorf("orbit period_ticks must be > 0")
		}
	case ScriptSweep:
		if s.PeriodTicks <= 0 {
			return fmt.Errorf("sweep period_ticks must be > 0")
		}
	default:
		return fmt.Errorf("unknown script kind %q", s.Kind)
	}
	return nil
}

// Script poses a camera for a given tick.
type Script struct {
	cfg ScriptConfig
}

func NewScript(cfg ScriptConfig) (*Script, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Script{cfg: cfg}, nil
}

func (s *Script) Config() ScriptConfig { return s.cfg }

func (s *Script) Apply(c *Camera, tick uint64) {
	cfg := s.cfg
	switch cfg.Kind {
	case ScriptOrbit:
		a := phase(tick, cfg.PeriodTicks) * 2 * math.Pi
		center := mgl64.Vec3(cfg.Center)
		c.Position = center.Add(mgl64.Vec3{cfg.Radius * math.Cos(a), cfg.Height, cfg.Radius * math.Sin(a)})
		c.LookAt(center)
	case ScriptSweep:
		// Triangle wave over [-sweep/2, +sweep/2] around the base yaw.
		p := phase(tick, cfg.PeriodTicks)
		tri := 1 - math.Abs(2*p-1)
		c.Position = mgl64.Vec3(cfg.Position)
		c.Yaw = mgl64.DegToRad(cfg.Yaw + (tri-0.5)*cfg.SweepDegrees)
		c.Pitch = mgl64.DegToRad(cfg.Pitch)
	default:
		c.Position = mgl64.Vec3(cfg.Position)
		c.Yaw = mgl64.DegToRad(cfg.Yaw)
		c.Pitch = mgl64.DegToRad(cfg.Pitch)
	}
}

func phase(tick uint64, period int) float64 {
	return float64(tick%uint64(period)) / float64(period)
}
