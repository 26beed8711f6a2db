package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelinteract.ai/internal/persistence/snapshot"
	"voxelinteract.ai/internal/sim/catalogs"
	"voxelinteract.ai/internal/sim/session"
	"voxelinteract.ai/internal/sim/tuning"
)

// SQLiteIndex is a secondary, queryable index of target transitions and
// snapshots. Writes are queued and applied by a single writer goroutine.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTarget   atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTarget reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	target   session.TickTrace
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick    uint64
	WorldID string
	Path    string
	Seed    int64
	Chunks  int
}

type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTargetTotal   uint64
	DropSnapshotTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS targets (
			world_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			visible INTEGER NOT NULL,
			tx INTEGER,
			ty INTEGER,
			tz INTEGER,
			px INTEGER,
			py INTEGER,
			pz INTEGER,
			rotation INTEGER,
			y_rotation INTEGER,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (world_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_targets_pos ON targets(tx, tz, ty, tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			world_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			chunks INTEGER NOT NULL,
			PRIMARY KEY (world_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTargetTotal:   s.dropTarget.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

// RecordTarget queues one target transition. It never blocks; entries are
// dropped when the writer falls behind since the trace log is authoritative.
func (s *SQLiteIndex) RecordTarget(tr session.TickTrace) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTarget, target: tr}:
	default:
		s.dropTarget.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:    snap.Header.Tick,
		WorldID: snap.Header.WorldID,
		Path:    path,
		Seed:    snap.Seed,
		Chunks:  len(snap.Chunks),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// UpsertCatalogs stores the block catalog and the applied tuning, keyed by
// digest, so an index can be matched to the configuration that produced it.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if configDir != "" {
		if b, err := os.ReadFile(filepath.Join(configDir, "blocks.json")); err == nil && len(b) > 0 {
			rows = append(rows, kv{name: "blocks_defs", digest: cats.Blocks.DefsDigest, json: b})
		}
	}
	if b, _ := json.Marshal(cats.Blocks.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "blocks_palette", digest: cats.Blocks.PaletteDigest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('world_id',?)`, tune.World.ID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTarget, _ := s.db.Prepare(`INSERT OR REPLACE INTO targets(world_id,tick,visible,tx,ty,tz,px,py,pz,rotation,y_rotation,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(world_id,tick,path,seed,chunks) VALUES(?,?,?,?,?)`)
	defer func() {
		if insertTarget != nil {
			_ = insertTarget.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTarget:
			if insertTarget == nil {
				break
			}
			if _, err := tx.Stmt(insertTarget).Exec(targetArgs(r.target)...); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot == nil {
				break
			}
			if _, err := tx.Stmt(insertSnapshot).Exec(sn.WorldID, int64(sn.Tick), sn.Path, sn.Seed, sn.Chunks); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

// targetArgs flattens a trace into the targets row; absent coordinates are NULL.
func targetArgs(tr session.TickTrace) []any {
	raw, _ := json.Marshal(tr)
	visible := 0
	if tr.Visible {
		visible = 1
	}
	args := []any{tr.WorldID, int64(tr.Tick), visible}
	if tr.Target != nil {
		args = append(args, tr.Target[0], tr.Target[1], tr.Target[2])
	} else {
		args = append(args, nil, nil, nil)
	}
	if p := tr.Potential; p != nil {
		args = append(args, p.Voxel[0], p.Voxel[1], p.Voxel[2], p.Rotation, p.YRotation)
	} else {
		args = append(args, nil, nil, nil, nil, nil)
	}
	return append(args, string(raw))
}
