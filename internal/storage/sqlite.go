package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/terrastream/internal/world/chunk"
)

const (
	sqliteFile    = "world.db"
	worldStateKey = "world_state"
)

// SQLiteStore keeps chunks and the world record in a single database file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// OpenSQLite opens or creates <dir>/world.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: empty save directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	path := filepath.Join(dir, sqliteFile)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
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
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			level INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (x, y, level)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) LoadChunk(key chunk.Key) (*chunk.Data, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	var blob []byte
	err := s.db.QueryRow(
		`SELECT data FROM chunks WHERE x = ? AND y = ? AND level = ?`,
		key.X, key.Y, key.Level,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query chunk %v: %w", key, err)
	}
	d, err := decodeChunk(key, blob)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (s *SQLiteStore) SaveChunk(d *chunk.Data) error {
	if s.closed.Load() {
		return ErrClosed
	}
	blob, err := encodeChunk(d)
	if err != nil {
		return err
	}
	k := d.Key()
	_, err = s.db.Exec(
		`INSERT INTO chunks (x, y, level, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(x, y, level) DO UPDATE SET data = excluded.data`,
		k.X, k.Y, k.Level, blob,
	)
	if err != nil {
		return fmt.Errorf("store chunk %v: %w", k, err)
	}
	return nil
}

func (s *SQLiteStore) LoadWorld() (WorldState, bool, error) {
	var st WorldState
	if s.closed.Load() {
		return st, false, ErrClosed
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, worldStateKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("query world state: %w", err)
	}
	if err := yaml.Unmarshal([]byte(value), &st); err != nil {
		return WorldState{}, false, fmt.Errorf("parse world state: %w", err)
	}
	return st, true, nil
}

func (s *SQLiteStore) SaveWorld(st WorldState) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("marshal world state: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		worldStateKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("store world state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CountChunks() (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
