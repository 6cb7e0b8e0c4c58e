package game

import (
	"strings"
	"testing"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/simulation/chronos"
	"github.com/Faultbox/terrastream/internal/storage"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.World.ChunkResolution = 4
	cfg.Pool.Capacity = 32
	cfg.Storage.Backend = "memory"
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, store storage.Store, opts SessionOptions) *Session {
	t.Helper()
	backend := texture.NewMemoryBackend(cfg.Pool.Capacity, cfg.World.ChunkResolution)
	s, err := NewSession(cfg, store, backend, opts)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestNewSessionFreshWorld(t *testing.T) {
	cfg := testConfig()
	cfg.World.Seed = 5
	cfg.Camera.Zoom = 2
	s := newTestSession(t, cfg, storage.NewMemoryStore(), SessionOptions{})

	if s.Seed() != 5 {
		t.Errorf("Seed() = %d, want 5", s.Seed())
	}
	if s.Camera.Zoom != 2 {
		t.Errorf("Zoom = %v, want 2", s.Camera.Zoom)
	}
	if s.Clock.TimeOfDay() != cfg.Clock.StartHour {
		t.Errorf("TimeOfDay() = %v, want %v", s.Clock.TimeOfDay(), cfg.Clock.StartHour)
	}
}

func TestSaveThenResume(t *testing.T) {
	cfg := testConfig()
	store := storage.NewMemoryStore()

	s := newTestSession(t, cfg, store, SessionOptions{})
	s.Camera.Position = gmath.Vec2{X: 3.5, Y: -1.25}
	s.Camera.SetZoom(4)
	s.Update(30)
	visible := s.Step(800, 600)
	if len(visible) == 0 {
		t.Fatal("Step() returned no nodes")
	}

	n, err := s.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if n != s.Streamer.Cache().Len() {
		t.Errorf("Save() wrote %d chunks, cache holds %d", n, s.Streamer.Cache().Len())
	}

	// A new session with a different configured seed resumes the saved one.
	cfg2 := testConfig()
	cfg2.World.Seed = 999
	resumed := newTestSession(t, cfg2, store, SessionOptions{})
	if resumed.Seed() != cfg.World.Seed {
		t.Errorf("resumed Seed() = %d, want %d", resumed.Seed(), cfg.World.Seed)
	}
	if resumed.Camera.Position != s.Camera.Position || resumed.Camera.Zoom != 4 {
		t.Errorf("camera = %+v zoom %v, want %+v zoom 4", resumed.Camera.Position, resumed.Camera.Zoom, s.Camera.Position)
	}
	if resumed.Clock.State() != s.Clock.State() {
		t.Errorf("clock = %+v, want %+v", resumed.Clock.State(), s.Clock.State())
	}

	resumed.Step(800, 600)
	if st := resumed.Streamer.Cache().Stats(); st.Generated != 0 || st.Loads != n {
		t.Errorf("resumed cache stats = %+v, want %d loads", st, n)
	}
}

func TestForceSeedOverridesSave(t *testing.T) {
	cfg := testConfig()
	store := storage.NewMemoryStore()
	if err := store.SaveWorld(storage.WorldState{Seed: 1, Zoom: 1}); err != nil {
		t.Fatal(err)
	}
	cfg.World.Seed = 2
	s := newTestSession(t, cfg, store, SessionOptions{ForceSeed: true})
	if s.Seed() != 2 {
		t.Errorf("Seed() = %d, want 2", s.Seed())
	}
}

func TestReloadRestoresSavedView(t *testing.T) {
	cfg := testConfig()
	store := storage.NewMemoryStore()
	s := newTestSession(t, cfg, store, SessionOptions{})

	s.Camera.Position = gmath.Vec2{X: 1, Y: 1}
	s.Step(640, 480)
	if _, err := s.Save(); err != nil {
		t.Fatal(err)
	}

	s.Camera.Position = gmath.Vec2{X: 50, Y: 50}
	s.Clock.Restore(chronos.State{TimeOfDay: 1, DayOfYear: 9, Year: 3})
	s.Step(640, 480)

	found, err := s.Reload()
	if err != nil || !found {
		t.Fatalf("Reload() = %v, %v", found, err)
	}
	if s.Camera.Position != (gmath.Vec2{X: 1, Y: 1}) {
		t.Errorf("camera = %+v, want (1, 1)", s.Camera.Position)
	}
	if s.Clock.DayOfYear() != 1 {
		t.Errorf("clock day = %d, want 1", s.Clock.DayOfYear())
	}
	if s.Streamer.Cache().Len() != 0 || s.Streamer.Pool().Occupied() != 0 {
		t.Error("Reload() kept resident chunks")
	}
}

func TestReloadWithoutSave(t *testing.T) {
	s := newTestSession(t, testConfig(), storage.NewMemoryStore(), SessionOptions{})
	s.Camera.Position = gmath.Vec2{X: 7}
	visible := s.Step(640, 480)
	cached, occupied := s.Streamer.Cache().Len(), s.Streamer.Pool().Occupied()

	found, err := s.Reload()
	if err != nil || found {
		t.Fatalf("Reload() = %v, %v, want false, nil", found, err)
	}
	if s.Camera.Position.X != 7 {
		t.Error("camera moved without a saved state")
	}
	if len(s.Streamer.Visible()) != len(visible) || s.Streamer.Cache().Len() != cached || s.Streamer.Pool().Occupied() != occupied {
		t.Error("Reload() without a save flushed resident chunks")
	}
}

func TestTitle(t *testing.T) {
	s := newTestSession(t, testConfig(), storage.NewMemoryStore(), SessionOptions{})
	s.Step(800, 600)
	title := s.Title(60)
	for _, want := range []string{"FPS 60", "zoom 1.00", "Y:1 D:1", "lat 0.00", "pool "} {
		if !strings.Contains(title, want) {
			t.Errorf("Title() = %q, missing %q", title, want)
		}
	}
}

func TestSessionRejectsBadPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.WritePolicy = "never"
	if _, err := NewSession(cfg, storage.NewMemoryStore(), nil, SessionOptions{}); err == nil {
		t.Error("NewSession() accepted an unknown write policy")
	}
}
