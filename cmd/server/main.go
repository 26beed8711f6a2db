package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelinteract.ai/internal/persistence/indexdb"
	persistlog "voxelinteract.ai/internal/persistence/log"
	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/protocol"
	"voxelinteract.ai/internal/sim/agent"
	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/interact"
	"voxelinteract.ai/internal/sim/session"
	"voxelinteract.ai/internal/sim/tuning"
	"voxelinteract.ai/internal/sim/world"
	"voxelinteract.ai/internal/transport/room"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "", "world id (default: tuning world.id)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite target index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if id := strings.TrimSpace(*worldID); id != "" {
		tune.World.ID = id
	}

	worldDir := filepath.Join(*dataDir, "worlds", tune.World.ID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	w, err := world.New(tune.WorldConfig(), cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(worldDir)
	}
	var startTick uint64
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != tune.World.ID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", tune.World.ID, snap.Header.WorldID)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		startTick = snap.Header.Tick
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), startTick)
	}

	// Optional read-model index (never read back by the session).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	} else {
		logger.Printf("index disabled (-disable_db)")
	}

	traceLog := persistlog.NewTraceLogger(worldDir)
	defer traceLog.Close()

	hl, err := interact.NewHighlight(tune.Interact)
	if err != nil {
		logger.Fatalf("highlight: %v", err)
	}
	style := session.HighlightStyle(hl)

	rm := room.New(room.Config{
		MaxClients:   tune.Room.MaxClients,
		PingInterval: time.Duration(tune.Room.PingIntervalMs) * time.Millisecond,
		WorldID:      tune.World.ID,
		TickRateHz:   tune.TickRateHz,
		Catalogs: protocol.CatalogDigests{
			BlockPalette: protocol.DigestRef{Digest: cats.Blocks.PaletteDigest, Count: len(cats.Blocks.Palette)},
		},
		Highlight: &style,
	}, log.New(os.Stdout, "[room] ", log.LstdFlags|log.Lmicroseconds))
	defer rm.Close()

	script, err := agent.NewScript(tune.Agent)
	if err != nil {
		logger.Fatalf("agent script: %v", err)
	}
	cfg := session.Config{
		TickRateHz:         tune.TickRateHz,
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
		SnapshotDir:        filepath.Join(worldDir, "snapshots"),
		Trace:              traceLog,
		Broadcast:          rm,
		Logger:             logger,
	}
	if idx != nil {
		cfg.Index = idx
	}
	sess, err := session.New(cfg, w, script, tune.Interact)
	if err != nil {
		logger.Fatalf("session: %v", err)
	}
	sess.SetStartTick(startTick)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, tune.World.ID, sess, rm, idx)
	})
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(adminState(tune.World.ID, sess, rm.Peers()))
	})
	mux.HandleFunc("/v1/room", rm.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s world=%s tick=%d", *addr, tune.World.ID, startTick)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	cancel()
	<-done
	if path, err := sess.SaveSnapshot(cfg.SnapshotDir); err != nil {
		logger.Printf("final snapshot: %v", err)
	} else {
		logger.Printf("final snapshot=%s", filepath.Base(path))
	}
}

type adminStateResp struct {
	WorldID string              `json:"world_id"`
	Tick    uint64              `json:"tick"`
	Peers   []string            `json:"peers"`
	Target  *protocol.TargetMsg `json:"target"`
}

// adminState reports the last completed tick together with its target.
func adminState(worldID string, sess *session.Session, peers []string) adminStateResp {
	resp := adminStateResp{WorldID: worldID, Peers: peers}
	if snap, tick, ok := sess.Latest(); ok {
		msg := session.TargetMessage(tick, snap)
		resp.Tick = tick
		resp.Target = &msg
	}
	return resp
}

func writeMetrics(rw http.ResponseWriter, worldID string, sess *session.Session, rm *room.Room, idx *indexdb.SQLiteIndex) {
	fmt.Fprintf(rw, "# HELP voxelinteract_tick Current session tick.\n")
	fmt.Fprintf(rw, "# TYPE voxelinteract_tick gauge\n")
	fmt.Fprintf(rw, "voxelinteract_tick{world=%q} %d\n", worldID, sess.Tick())

	fmt.Fprintf(rw, "# HELP voxelinteract_room_clients Connected room clients.\n")
	fmt.Fprintf(rw, "# TYPE voxelinteract_room_clients gauge\n")
	fmt.Fprintf(rw, "voxelinteract_room_clients{world=%q} %d\n", worldID, rm.Len())

	visible := 0
	if snap, _, ok := sess.Latest(); ok && snap.Visible {
		visible = 1
	}
	fmt.Fprintf(rw, "# HELP voxelinteract_target_visible Whether the highlight is shown.\n")
	fmt.Fprintf(rw, "# TYPE voxelinteract_target_visible gauge\n")
	fmt.Fprintf(rw, "voxelinteract_target_visible{world=%q} %d\n", worldID, visible)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP voxelinteract_index_queue_depth Index writer queue depth.\n")
	fmt.Fprintf(rw, "# TYPE voxelinteract_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "voxelinteract_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)
	fmt.Fprintf(rw, "# HELP voxelinteract_index_dropped_total Index records dropped on a full queue.\n")
	fmt.Fprintf(rw, "# TYPE voxelinteract_index_dropped_total counter\n")
	fmt.Fprintf(rw, "voxelinteract_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "target", s.DropTargetTotal)
	fmt.Fprintf(rw, "voxelinteract_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", s.DropSnapshotTotal)
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
