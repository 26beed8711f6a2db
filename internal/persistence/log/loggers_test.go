package log

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"voxelinteract.ai/internal/protocol"
	"voxelinteract.ai/internal/sim/session"
)

func TestTraceLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTraceLogger(dir)
	want := []session.TickTrace{
		{Tick: 0, WorldID: "W", Pos: [3]float64{0.5, 1.5, 0.5}, Dir: [3]float64{0, -1, 0}, Visible: true,
			Target: &[3]int{0, 0, 0}, Normal: [3]int{0, 1, 0}, Changed: true,
			Potential: &protocol.PotentialMsg{Voxel: [3]int{0, 1, 0}}},
		{Tick: 1, WorldID: "W", Pos: [3]float64{0.1, 0.2, 0.30000000000000004}, Dir: [3]float64{1, 0, 0}},
	}
	for _, tr := range want {
		if err := l.WriteTrace(tr); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := TraceFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %v, %v", files, err)
	}
	var got []session.TickTrace
	if err := ReadTraces(files[0], func(tr session.TickTrace) error {
		got = append(got, tr)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d traces", len(got))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Pos != want[i].Pos || got[i].Dir != want[i].Dir || !got[i].SameResult(want[i]) {
			t.Fatalf("trace %d = %+v want %+v", i, got[i], want[i])
		}
	}

	stop := errors.New("stop")
	n := 0
	err = ReadTraces(files[0], func(session.TickTrace) error { n++; return stop })
	if !errors.Is(err, stop) || n != 1 {
		t.Fatalf("callback error not propagated: %v n=%d", err, n)
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "trace")
	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }
	if err := w.Write(map[string]int{"tick": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"tick": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "trace-*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if filepath.Base(files[0]) != "trace-2024-05-01-10.jsonl.zst" || filepath.Base(files[1]) != "trace-2024-05-01-11.jsonl.zst" {
		t.Fatalf("names = %v", files)
	}
}
