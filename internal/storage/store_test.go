package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/terrastream/internal/simulation/chronos"
	"github.com/Faultbox/terrastream/internal/world/chunk"
)

func testChunk(t *testing.T, key chunk.Key, seed float32) *chunk.Data {
	t.Helper()
	d, err := chunk.New(key, 4)
	if err != nil {
		t.Fatalf("chunk.New() error = %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			for c := chunk.Channel(0); c < chunk.NumChannels; c++ {
				d.Set(x, y, c, seed+float32(x*4+y+int(c))/100)
			}
		}
	}
	return d
}

type backendCase struct {
	name string
	open func(t *testing.T, dir string) Store
}

var backends = []backendCase{
	{"fs", func(t *testing.T, dir string) Store {
		s, err := OpenFileStore(dir)
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		return s
	}},
	{"sqlite", func(t *testing.T, dir string) Store {
		s, err := OpenSQLite(dir)
		if err != nil {
			t.Fatalf("OpenSQLite() error = %v", err)
		}
		return s
	}},
	{"memory", func(t *testing.T, dir string) Store {
		return NewMemoryStore()
	}},
}

func TestChunkRoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			key := chunk.Key{X: -3, Y: 5, Level: 2}
			if d, ok, err := s.LoadChunk(key); err != nil || ok || d != nil {
				t.Fatalf("LoadChunk(missing) = %v, %v, %v, want nil, false, nil", d, ok, err)
			}

			want := testChunk(t, key, 0.1)
			if err := s.SaveChunk(want); err != nil {
				t.Fatalf("SaveChunk() error = %v", err)
			}
			got, ok, err := s.LoadChunk(key)
			if err != nil || !ok {
				t.Fatalf("LoadChunk() = %v, %v", ok, err)
			}
			if !got.Equal(want) {
				t.Error("loaded chunk differs from saved chunk")
			}
			if got.IsDirty() {
				t.Error("loaded chunk should be clean")
			}

			// Overwrite in place.
			want2 := testChunk(t, key, 0.5)
			if err := s.SaveChunk(want2); err != nil {
				t.Fatalf("SaveChunk(overwrite) error = %v", err)
			}
			got, _, _ = s.LoadChunk(key)
			if !got.Equal(want2) {
				t.Error("overwrite not visible")
			}

			if err := s.SaveChunk(testChunk(t, chunk.Key{X: 0, Y: 0, Level: 0}, 0)); err != nil {
				t.Fatalf("SaveChunk() error = %v", err)
			}
			if n, err := s.CountChunks(); err != nil || n != 2 {
				t.Errorf("CountChunks() = %d, %v, want 2", n, err)
			}
		})
	}
}

func TestWorldStateRoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			defer s.Close()

			if _, ok, err := s.LoadWorld(); ok || err != nil {
				t.Fatalf("LoadWorld(empty) = %v, %v, want false, nil", ok, err)
			}
			want := WorldState{
				Seed:    42,
				CameraX: 1.25,
				CameraY: -0.5,
				Zoom:    3,
				Clock:   chronos.State{TimeOfDay: 6.5, DayOfYear: 12, Year: 2, TotalHours: 600},
			}
			if err := s.SaveWorld(want); err != nil {
				t.Fatalf("SaveWorld() error = %v", err)
			}
			got, ok, err := s.LoadWorld()
			if err != nil || !ok {
				t.Fatalf("LoadWorld() = %v, %v", ok, err)
			}
			if got != want {
				t.Errorf("LoadWorld() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestClosedStore(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t, t.TempDir())
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			key := chunk.Key{}
			if _, _, err := s.LoadChunk(key); !errors.Is(err, ErrClosed) {
				t.Errorf("LoadChunk() error = %v, want ErrClosed", err)
			}
			if err := s.SaveChunk(testChunk(t, key, 0)); !errors.Is(err, ErrClosed) {
				t.Errorf("SaveChunk() error = %v, want ErrClosed", err)
			}
			if err := s.SaveWorld(WorldState{}); !errors.Is(err, ErrClosed) {
				t.Errorf("SaveWorld() error = %v, want ErrClosed", err)
			}
			if _, err := s.CountChunks(); !errors.Is(err, ErrClosed) {
				t.Errorf("CountChunks() error = %v, want ErrClosed", err)
			}
		})
	}
}

func TestReopenKeepsData(t *testing.T) {
	for _, b := range backends[:2] {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			key := chunk.Key{X: 7, Y: 7, Level: 3}
			want := testChunk(t, key, 0.2)

			s := b.open(t, dir)
			if err := s.SaveChunk(want); err != nil {
				t.Fatalf("SaveChunk() error = %v", err)
			}
			if err := s.SaveWorld(WorldState{Seed: 9, Zoom: 1}); err != nil {
				t.Fatalf("SaveWorld() error = %v", err)
			}
			s.Close()

			s = b.open(t, dir)
			defer s.Close()
			got, ok, err := s.LoadChunk(key)
			if err != nil || !ok || !got.Equal(want) {
				t.Errorf("LoadChunk() after reopen = %v, %v", ok, err)
			}
			st, ok, err := s.LoadWorld()
			if err != nil || !ok || st.Seed != 9 {
				t.Errorf("LoadWorld() after reopen = %+v, %v, %v", st, ok, err)
			}
		})
	}
}

func TestFileStoreRejectsMisplacedChunk(t *testing.T) {
	s, err := OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := chunk.Key{X: 1, Y: 2, Level: 3}
	b := chunk.Key{X: 4, Y: 5, Level: 3}
	if err := s.SaveChunk(testChunk(t, a, 0)); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(s.ChunkPath(a), s.ChunkPath(b)); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.LoadChunk(b); ok || !errors.Is(err, chunk.ErrCorrupt) {
		t.Errorf("LoadChunk(misplaced) = %v, %v, want ErrCorrupt", ok, err)
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := chunk.Key{X: -1, Y: 2, Level: 4}
	if err := s.SaveChunk(testChunk(t, key, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveWorld(WorldState{Seed: 1}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "chunks", "chunk_-1_2_4.bin.zst")); err != nil {
		t.Errorf("chunk file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "world.yaml")); err != nil {
		t.Errorf("world file missing: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "chunks"))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestGarbageBlob(t *testing.T) {
	s := NewMemoryStore()
	key := chunk.Key{X: 1}
	s.Corrupt(key, []byte("not zstd"))
	if d, ok, err := s.LoadChunk(key); err == nil || ok || d != nil {
		t.Errorf("LoadChunk(garbage) = %v, %v, %v, want error", d, ok, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fs", "sqlite", "memory", "FS"} {
		s, err := Open(name, filepath.Join(dir, strings.ToLower(name)+"x"))
		if err != nil {
			t.Errorf("Open(%q) error = %v", name, err)
			continue
		}
		s.Close()
		if !ValidBackend(name) {
			t.Errorf("ValidBackend(%q) = false", name)
		}
	}
	if _, err := Open("postgres", dir); err == nil {
		t.Error("Open(postgres) should fail")
	}
	if ValidBackend("postgres") {
		t.Error("ValidBackend(postgres) = true")
	}
}
