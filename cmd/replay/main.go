package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "voxelinteract.ai/internal/persistence/log"
	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/tuning"
	"voxelinteract.ai/internal/sim/world"
)

func main() {
	var (
		worldDir   = flag.String("world_dir", "", "world data dir containing traces/ (e.g. ./data/worlds/OVERWORLD)")
		snapPath   = flag.String("snapshot", "", "path to .snap.zst (default: none, world is generated from tuning)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *worldDir == "" {
		fmt.Fprintln(os.Stderr, "missing -world_dir")
		os.Exit(2)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	} else if err != nil {
		tune = tuning.Defaults()
	}

	w, err := world.New(tune.WorldConfig(), cats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}
	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			fmt.Fprintln(os.Stderr, "import snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d world=%s tick=%d seed=%d chunks=%d\n",
			snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, len(snap.Chunks))
	}

	files, err := persistlog.TraceFiles(*worldDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list traces:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trace files found in", filepath.Join(*worldDir, "traces"))
		os.Exit(1)
	}

	v, err := newVerifier(w, tune.Interact, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
	for _, path := range files {
		if err := v.replayFile(path); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		if v.done() {
			break
		}
	}
	fmt.Printf("replay ok: checked=%d ticks files=%d\n", v.checked, len(files))
}
