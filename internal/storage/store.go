// Package storage persists chunks and world state.
//
// Every backend stores chunks as the chunk binary encoding wrapped in zstd.
// Lookups follow the (value, found, err) convention: a missing record is
// (nil, false, nil), never an error.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/terrastream/internal/simulation/chronos"
	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Backend names accepted by Open.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is the persistence gateway used by the chunk cache and the viewer.
type Store interface {
	LoadChunk(key chunk.Key) (*chunk.Data, bool, error)
	SaveChunk(d *chunk.Data) error
	LoadWorld() (WorldState, bool, error)
	SaveWorld(s WorldState) error
	CountChunks() (int, error)
	Close() error
}

// WorldState is the small per-world record saved next to the chunks.
type WorldState struct {
	Seed    int64         `yaml:"seed"`
	CameraX float64       `yaml:"camera_x"`
	CameraY float64       `yaml:"camera_y"`
	Zoom    float64       `yaml:"zoom"`
	Clock   chronos.State `yaml:"clock"`
}

// Open creates the store for a backend name rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendFS, "":
		return OpenFileStore(dir)
	case BackendSQLite:
		return OpenSQLite(dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

// ValidBackend reports whether Open accepts name.
func ValidBackend(name string) bool {
	switch strings.ToLower(name) {
	case BackendFS, BackendSQLite, BackendMemory:
		return true
	}
	return false
}
