package interact

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

type HighlightType string

const (
	HighlightBox     HighlightType = "box"
	HighlightOutline HighlightType = "outline"
)

var ErrInvalidHighlightType = errors.New("invalid highlight type")

// Params are fixed at construction.
type Params struct {
	ReachDistance    float64       `yaml:"reach_distance"`
	IgnoreFluid      bool          `yaml:"ignore_fluid"`
	InverseDirection bool          `yaml:"inverse_direction"`
	HighlightType    HighlightType `yaml:"highlight_type"`
	HighlightScale   float64       `yaml:"highlight_scale"`
	HighlightLerp    float64       `yaml:"highlight_lerp"`
	HighlightColor   string        `yaml:"highlight_color"`
	HighlightOpacity float64       `yaml:"highlight_opacity"`
	PotentialVisuals bool          `yaml:"potential_visuals"`
}

func DefaultParams() Params {
	return Params{
		ReachDistance:    32,
		IgnoreFluid:      true,
		InverseDirection: false,
		HighlightType:    HighlightBox,
		HighlightScale:   1.002,
		HighlightLerp:    0.8,
		HighlightColor:   "#ffffff",
		HighlightOpacity: 0.1,
		PotentialVisuals: false,
	}
}

func (p Params) Validate() error {
	switch p.HighlightType {
	case HighlightBox, HighlightOutline:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHighlightType, p.HighlightType)
	}
	if p.ReachDistance < 0 {
		return fmt.Errorf("reach_distance must be >= 0")
	}
	if p.HighlightScale <= 0 {
		return fmt.Errorf("highlight_scale must be > 0")
	}
	if p.HighlightLerp <= 0 || p.HighlightLerp > 1 {
		return fmt.Errorf("highlight_lerp must be in (0,1]")
	}
	if p.HighlightOpacity < 0 || p.HighlightOpacity > 1 {
		return fmt.Errorf("highlight_opacity must be in [0,1]")
	}
	if _, err := colorful.Hex(p.HighlightColor); err != nil {
		return fmt.Errorf("highlight_color %q: %w", p.HighlightColor, err)
	}
	return nil
}
