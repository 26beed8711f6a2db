package session

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/sim/agent"
	"voxelinteract.ai/internal/sim/interact"
	"voxelinteract.ai/internal/sim/world"
)

type TraceSink interface {
	WriteTrace(TickTrace) error
}

type Index interface {
	RecordTarget(TickTrace) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

type Broadcaster interface {
	Broadcast(v any)
}

type Config struct {
	TickRateHz int

	// SnapshotEveryTicks > 0 writes world snapshots under SnapshotDir.
	SnapshotEveryTicks int
	SnapshotDir        string

	Trace     TraceSink
	Index     Index
	Broadcast Broadcaster
	Logger    *log.Logger
}

// Session drives one scripted agent and its targeting engine over a world.
// Step and Run must not be called concurrently; Latest and Tick may be read
// from any goroutine.
type Session struct {
	cfg    Config
	world  *world.World
	camera *agent.Camera
	script *agent.Script
	engine *interact.Engine
	logger *log.Logger

	tick atomic.Uint64

	mu       sync.RWMutex
	last     interact.Snapshot
	lastTick uint64
	seen     bool

	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config, w *world.World, script *agent.Script, p interact.Params) (*Session, error) {
	if w == nil || script == nil {
		return nil, fmt.Errorf("session: world and script are required")
	}
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("session: tick rate must be > 0")
	}
	cam := &agent.Camera{}
	eng, err := interact.New(cam, w, p)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		cfg:    cfg,
		world:  w,
		camera: cam,
		script: script,
		engine: eng,
		logger: logger,
		stop:   make(chan struct{}),
	}, nil
}

func (s *Session) World() *world.World      { return s.world }
func (s *Session) Engine() *interact.Engine { return s.engine }
func (s *Session) Camera() *agent.Camera    { return s.camera }
func (s *Session) Tick() uint64             { return s.tick.Load() }
func (s *Session) TickRateHz() int          { return s.cfg.TickRateHz }
func (s *Session) SetStartTick(tick uint64) { s.tick.Store(tick) }
func (s *Session) Stop()                    { s.stopOnce.Do(func() { close(s.stop) }) }

// Latest returns the snapshot of the most recent tick and its tick number.
func (s *Session) Latest() (interact.Snapshot, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastTick, s.seen
}

func (s *Session) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step advances one tick: pose the camera, update the engine and publish the
// result to the configured sinks.
func (s *Session) Step() TickTrace {
	tick := s.tick.Load()
	s.script.Apply(s.camera, tick)
	s.engine.Update()
	snap := s.engine.Snapshot()

	tr := NewTrace(tick, s.world.ID(), s.camera.WorldPosition(), s.camera.WorldDirection(), snap)

	s.mu.Lock()
	tr.Changed = !s.seen || !snap.SameTarget(s.last)
	s.last = snap
	s.lastTick = tick
	s.seen = true
	s.mu.Unlock()

	if s.cfg.Trace != nil {
		if err := s.cfg.Trace.WriteTrace(tr); err != nil {
			s.logger.Printf("trace tick %d: %v", tick, err)
		}
	}
	if s.cfg.Index != nil && tr.Changed {
		if err := s.cfg.Index.RecordTarget(tr); err != nil {
			s.logger.Printf("index tick %d: %v", tick, err)
		}
	}
	if s.cfg.Broadcast != nil {
		s.cfg.Broadcast.Broadcast(TargetMessage(tick, snap))
	}

	s.tick.Add(1)
	if n := s.cfg.SnapshotEveryTicks; n > 0 && s.cfg.SnapshotDir != "" && (tick+1)%uint64(n) == 0 {
		if _, err := s.SaveSnapshot(s.cfg.SnapshotDir); err != nil {
			s.logger.Printf("snapshot tick %d: %v", tick+1, err)
		}
	}
	return tr
}

// SaveSnapshot writes the world at the current tick to dir/<tick>.snap.zst.
func (s *Session) SaveSnapshot(dir string) (string, error) {
	tick := s.tick.Load()
	path := filepath.Join(dir, fmt.Sprintf("%d.snap.zst", tick))
	snap := s.world.ExportSnapshot(tick)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	if s.cfg.Index != nil {
		s.cfg.Index.RecordSnapshot(path, snap)
	}
	return path, nil
}
