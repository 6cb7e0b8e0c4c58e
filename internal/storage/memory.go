package storage

import (
	"sync"

	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// MemoryStore holds encoded chunks in process memory. Contents are lost on
// exit; it backs --ephemeral sessions and tests.
type MemoryStore struct {
	mu     sync.Mutex
	chunks map[chunk.Key][]byte
	world  *WorldState
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[chunk.Key][]byte)}
}

func (s *MemoryStore) LoadChunk(key chunk.Key) (*chunk.Data, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	blob, ok := s.chunks[key]
	if !ok {
		return nil, false, nil
	}
	d, err := decodeChunk(key, blob)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (s *MemoryStore) SaveChunk(d *chunk.Data) error {
	blob, err := encodeChunk(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.chunks[d.Key()] = blob
	return nil
}

func (s *MemoryStore) LoadWorld() (WorldState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return WorldState{}, false, ErrClosed
	}
	if s.world == nil {
		return WorldState{}, false, nil
	}
	return *s.world, true, nil
}

func (s *MemoryStore) SaveWorld(st WorldState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.world = &st
	return nil
}

func (s *MemoryStore) CountChunks() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.chunks), nil
}

// Corrupt overwrites the stored bytes for key.
func (s *MemoryStore) Corrupt(key chunk.Key, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[key] = blob
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
