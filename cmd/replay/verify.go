package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	persistlog "voxelinteract.ai/internal/persistence/log"
	"voxelinteract.ai/internal/sim/agent"
	"voxelinteract.ai/internal/sim/interact"
	"voxelinteract.ai/internal/sim/session"
	"voxelinteract.ai/internal/sim/world"
)

// verifier re-runs recorded poses through an engine and compares the
// target and potential against the trace.
type verifier struct {
	pose   *agent.Pose
	engine *interact.Engine

	from, to uint64
	last     uint64
	started  bool
	stopped  bool
	checked  uint64
}

func newVerifier(w *world.World, p interact.Params, from, to uint64) (*verifier, error) {
	pose := &agent.Pose{}
	eng, err := interact.New(pose, w, p)
	if err != nil {
		return nil, err
	}
	return &verifier{pose: pose, engine: eng, from: from, to: to}, nil
}

func (v *verifier) done() bool { return v.stopped }

func (v *verifier) check(tr session.TickTrace) error {
	if v.started && tr.Tick <= v.last {
		return fmt.Errorf("tick order: got=%d after %d", tr.Tick, v.last)
	}
	v.started = true
	v.last = tr.Tick
	if tr.Tick < v.from {
		return nil
	}

	v.pose.Position = mgl64.Vec3(tr.Pos)
	v.pose.Direction = mgl64.Vec3(tr.Dir)
	v.engine.Update()
	got := session.NewTrace(tr.Tick, tr.WorldID, v.pose.Position, v.pose.Direction, v.engine.Snapshot())
	if !got.SameResult(tr) {
		return fmt.Errorf("result mismatch at tick %d: got=%s want=%s", tr.Tick, describe(got), describe(tr))
	}
	v.checked++
	return nil
}

func (v *verifier) replayFile(path string) error {
	err := persistlog.ReadTraces(path, func(tr session.TickTrace) error {
		if v.to != 0 && tr.Tick > v.to {
			return errStop
		}
		return v.check(tr)
	})
	if errors.Is(err, errStop) {
		v.stopped = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

var errStop = errors.New("stop")

func describe(tr session.TickTrace) string {
	if !tr.Visible || tr.Target == nil {
		return "hidden"
	}
	s := fmt.Sprintf("target=%v normal=%v", *tr.Target, tr.Normal)
	if p := tr.Potential; p != nil {
		s += fmt.Sprintf(" potential=%v rot=%d yrot=%d", p.Voxel, p.Rotation, p.YRotation)
	}
	return s
}
