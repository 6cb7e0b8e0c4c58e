package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrastream/internal/world/chunk"
)

const (
	worldFile   = "world.yaml"
	chunkDir    = "chunks"
	chunkSuffix = ".bin.zst"
)

// FileStore keeps one compressed file per chunk and a YAML world record.
type FileStore struct {
	dir    string
	closed atomic.Bool
}

// OpenFileStore creates dir and its chunk subdirectory if needed.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: empty save directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, chunkDir), 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the save directory.
func (s *FileStore) Dir() string { return s.dir }

// ChunkPath returns the file that holds key.
func (s *FileStore) ChunkPath(key chunk.Key) string {
	name := fmt.Sprintf("chunk_%d_%d_%d%s", key.X, key.Y, key.Level, chunkSuffix)
	return filepath.Join(s.dir, chunkDir, name)
}

func (s *FileStore) LoadChunk(key chunk.Key) (*chunk.Data, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	blob, err := os.ReadFile(s.ChunkPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read chunk %v: %w", key, err)
	}
	d, err := decodeChunk(key, blob)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (s *FileStore) SaveChunk(d *chunk.Data) error {
	if s.closed.Load() {
		return ErrClosed
	}
	blob, err := encodeChunk(d)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.ChunkPath(d.Key()), blob); err != nil {
		return fmt.Errorf("write chunk %v: %w", d.Key(), err)
	}
	return nil
}

func (s *FileStore) LoadWorld() (WorldState, bool, error) {
	var st WorldState
	if s.closed.Load() {
		return st, false, ErrClosed
	}
	data, err := os.ReadFile(filepath.Join(s.dir, worldFile))
	if errors.Is(err, fs.ErrNotExist) {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("read world state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return WorldState{}, false, fmt.Errorf("parse world state: %w", err)
	}
	return st, true, nil
}

func (s *FileStore) SaveWorld(st WorldState) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("marshal world state: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, worldFile), data); err != nil {
		return fmt.Errorf("write world state: %w", err)
	}
	return nil
}

func (s *FileStore) CountChunks() (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, chunkDir))
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), chunkSuffix) {
			n++
		}
	}
	return n, nil
}

func (s *FileStore) Close() error {
	s.closed.Store(true)
	return nil
}

// writeFileAtomic writes to a sibling temp file and renames it over path,
// so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
