package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"voxelinteract.ai/internal/protocol"
	"voxelinteract.ai/internal/sim/agent"
	"voxelinteract.ai/internal/sim/interact"
	"voxelinteract.ai/internal/sim/world"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	World    WorldGen           `yaml:"world"`
	Agent    agent.ScriptConfig `yaml:"agent"`
	Interact interact.Params    `yaml:"interact"`
	Room     RoomLimits         `yaml:"room"`
}

type WorldGen struct {
	ID         string `yaml:"id"`
	Seed       int64  `yaml:"seed"`
	Generate   bool   `yaml:"generate"`
	BaseHeight int    `yaml:"base_height"`
	Amplitude  int    `yaml:"amplitude"`
	SeaLevel   int    `yaml:"sea_level"`
	RegionSize int    `yaml:"region_size"`
}

type RoomLimits struct {
	MaxClients     int `yaml:"max_clients"`
	PingIntervalMs int `yaml:"ping_interval_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    protocol.Version,
		TickRateHz:         20,
		SnapshotEveryTicks: 0,
		World: WorldGen{
			ID:         "OVERWORLD",
			Seed:       1337,
			Generate:   true,
			BaseHeight: 8,
			Amplitude:  6,
			SeaLevel:   6,
			RegionSize: 32,
		},
		Agent: agent.ScriptConfig{
			Kind:        agent.ScriptOrbit,
			Center:      [3]float64{0.5, 8, 0.5},
			Radius:      6,
			Height:      6,
			PeriodTicks: 400,
		},
		Interact: interact.DefaultParams(),
		Room: RoomLimits{
			MaxClients:     64,
			PingIntervalMs: 15000,
		},
	}
}

// Load reads a tuning file over the defaults. An empty path yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.ProtocolVersion != protocol.Version {
		return fmt.Errorf("protocol_version %q not supported (want %q)", t.ProtocolVersion, protocol.Version)
	}
	if t.TickRateHz <= 0 || t.TickRateHz > 240 {
		return fmt.Errorf("tick_rate_hz must be in [1,240]")
	}
	if t.SnapshotEveryTicks < 0 {
		return fmt.Errorf("snapshot_every_ticks must be >= 0")
	}
	if strings.TrimSpace(t.World.ID) == "" {
		return fmt.Errorf("world.id is required")
	}
	if t.World.Generate {
		if t.World.RegionSize <= 0 {
			return fmt.Errorf("world.region_size must be > 0")
		}
		if t.World.Amplitude < 0 {
			return fmt.Errorf("world.amplitude must be >= 0")
		}
	}
	if err := t.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := t.Interact.Validate(); err != nil {
		return fmt.Errorf("interact: %w", err)
	}
	if t.Room.MaxClients <= 0 {
		return fmt.Errorf("room.max_clients must be > 0")
	}
	if t.Room.PingIntervalMs <= 0 {
		return fmt.Errorf("room.ping_interval_ms must be > 0")
	}
	return nil
}

func (t Tuning) WorldConfig() world.Config {
	return world.Config{
		ID:         t.World.ID,
		Seed:       t.World.Seed,
		Generate:   t.World.Generate,
		BaseHeight: t.World.BaseHeight,
		Amplitude:  t.World.Amplitude,
		SeaLevel:   t.World.SeaLevel,
		RegionSize: t.World.RegionSize,
	}
}
