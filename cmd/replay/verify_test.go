package main

import (
	"strings"
	"testing"

	persistlog "voxelinteract.ai/internal/persistence/log"
	"voxelinteract.ai/internal/sim/agent"
	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/geom"
	"voxelinteract.ai/internal/sim/interact"
	"voxelinteract.ai/internal/sim/session"
	"voxelinteract.ai/internal/sim/world"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	w, err := world.New(world.Config{ID: "W"}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.Fill(geom.Vec3i{X: -2, Y: 0, Z: -2}, geom.Vec3i{X: 2, Y: 0, Z: 2}, cats.Blocks.MustID("STONE"))
	return w
}

// recordTraces runs an orbiting session for n ticks and returns the trace files.
func recordTraces(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	tl := persistlog.NewTraceLogger(dir)
	script, err := agent.NewScript(agent.ScriptConfig{Kind: agent.ScriptOrbit, Center: [3]float64{0.5, 0.5, 0.5}, Radius: 2, Height: 3, PeriodTicks: 4})
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	s, err := session.New(session.Config{TickRateHz: 20, Trace: tl}, testWorld(t), script, interact.DefaultParams())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	for i := 0; i < n; i++ {
		s.Step()
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, err := persistlog.TraceFiles(dir)
	if err != nil || len(files) == 0 {
		t.Fatalf("files = %v, %v", files, err)
	}
	return files
}

func TestReplayMatchesRecordedSession(t *testing.T) {
	files := recordTraces(t, 8)
	v, err := newVerifier(testWorld(t), interact.DefaultParams(), 0, 0)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	for _, f := range files {
		if err := v.replayFile(f); err != nil {
			t.Fatalf("replay: %v", err)
		}
	}
	if v.checked != 8 {
		t.Fatalf("checked = %d", v.checked)
	}
}

func TestReplayTickWindow(t *testing.T) {
	files := recordTraces(t, 8)
	v, err := newVerifier(testWorld(t), interact.DefaultParams(), 2, 5)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	for _, f := range files {
		if err := v.replayFile(f); err != nil {
			t.Fatalf("replay: %v", err)
		}
		if v.done() {
			break
		}
	}
	if v.checked != 4 || !v.done() {
		t.Fatalf("checked = %d done = %v", v.checked, v.done())
	}
}

func TestReplayDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	tl := persistlog.NewTraceLogger(dir)
	// Looking straight down at (0,0,0), but the trace claims a different voxel.
	bad := session.TickTrace{
		Tick: 0, WorldID: "W", Pos: [3]float64{0.5, 2.5, 0.5}, Dir: [3]float64{0, -1, 0},
		Visible: true, Target: &[3]int{1, 0, 0}, Normal: [3]int{0, 1, 0},
	}
	if err := tl.WriteTrace(bad); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = tl.Close()
	files, _ := persistlog.TraceFiles(dir)

	v, err := newVerifier(testWorld(t), interact.DefaultParams(), 0, 0)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	err = v.replayFile(files[0])
	if err == nil || !strings.Contains(err.Error(), "mismatch at tick 0") {
		t.Fatalf("err = %v", err)
	}
}

func TestReplayRejectsOutOfOrderTicks(t *testing.T) {
	v, err := newVerifier(testWorld(t), interact.DefaultParams(), 0, 0)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	hidden := session.TickTrace{Pos: [3]float64{0.5, 5, 0.5}, Dir: [3]float64{0, 1, 0}}
	hidden.Tick = 3
	if err := v.check(hidden); err != nil {
		t.Fatalf("check: %v", err)
	}
	hidden.Tick = 3
	if err := v.check(hidden); err == nil {
		t.Fatalf("repeated tick accepted")
	}
}
