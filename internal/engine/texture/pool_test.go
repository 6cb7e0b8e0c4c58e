package texture

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/world/chunk"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
)

const testRes = 4

type fakeSource struct {
	gets int
}

func (s *fakeSource) Get(key chunk.Key) *chunk.Data {
	s.gets++
	d, err := chunk.New(key, testRes)
	if err != nil {
		panic(err)
	}
	h := float32(key.X%10) / 10
	for y := 0; y < testRes; y++ {
		for x := 0; x < testRes; x++ {
			d.Set(x, y, chunk.Height, h)
		}
	}
	return d
}

func nodes(keys ...chunk.Key) []quadtree.Node {
	out := make([]quadtree.Node, len(keys))
	for i, k := range keys {
		out[i] = quadtree.Node{Key: k}
	}
	return out
}

func key(x int) chunk.Key { return chunk.Key{X: x, Y: 0, Level: 3} }

func newTestPool(t *testing.T, capacity int) (*Pool, *MemoryBackend, *fakeSource) {
	t.Helper()
	backend := NewMemoryBackend(capacity, testRes)
	src := &fakeSource{}
	p, err := NewPool(capacity, backend, src, ColorEncoder{})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	return p, backend, src
}

// checkBijection verifies that every slot is either free or owned by
// exactly one key.
func checkBijection(t *testing.T, p *Pool) {
	t.Helper()
	if p.Occupied()+p.Free() != p.Capacity() {
		t.Fatalf("occupied %d + free %d != capacity %d", p.Occupied(), p.Free(), p.Capacity())
	}
	seen := make(map[int]bool)
	for k, slot := range p.slots {
		if slot < 0 || slot >= p.Capacity() {
			t.Fatalf("%v maps to out-of-range slot %d", k, slot)
		}
		if seen[slot] {
			t.Fatalf("slot %d mapped twice", slot)
		}
		seen[slot] = true
	}
	for _, slot := range p.free {
		if seen[slot] {
			t.Fatalf("slot %d is both free and mapped", slot)
		}
		seen[slot] = true
	}
}

func TestNewPoolValidates(t *testing.T) {
	if _, err := NewPool(0, NewMemoryBackend(4, testRes), &fakeSource{}, ColorEncoder{}); err == nil {
		t.Error("NewPool(0) should fail")
	}
	if _, err := NewPool(8, NewMemoryBackend(4, testRes), &fakeSource{}, ColorEncoder{}); err == nil {
		t.Error("NewPool() with too few backend layers should fail")
	}
}

func TestReconcileExhaustionAndReuse(t *testing.T) {
	p, _, src := newTestPool(t, 4)

	first := nodes(key(0), key(1), key(2), key(3), key(4), key(5))
	p.Reconcile(first)
	checkBijection(t, p)

	if p.Occupied() != 4 || p.Free() != 0 {
		t.Fatalf("occupied = %d, free = %d, want 4, 0", p.Occupied(), p.Free())
	}
	for i := 0; i < 4; i++ {
		if _, ok := p.SlotFor(key(i)); !ok {
			t.Errorf("key %d not resident", i)
		}
	}
	for i := 4; i < 6; i++ {
		if _, ok := p.SlotFor(key(i)); ok {
			t.Errorf("key %d resident past capacity", i)
		}
	}
	st := p.Stats()
	if st.Uploads != 4 || st.Exhausted != 2 || st.ExhaustedFrames != 1 {
		t.Errorf("Stats() = %+v", st)
	}

	kept := map[int]int{}
	for i := 0; i < 3; i++ {
		kept[i], _ = p.SlotFor(key(i))
	}
	freed, _ := p.SlotFor(key(3))

	src.gets = 0
	p.Reconcile(nodes(key(0), key(1), key(2), key(9)))
	checkBijection(t, p)

	for i, slot := range kept {
		if got, _ := p.SlotFor(key(i)); got != slot {
			t.Errorf("key %d moved from slot %d to %d", i, slot, got)
		}
	}
	if got, ok := p.SlotFor(key(9)); !ok || got != freed {
		t.Errorf("new key got slot %d (%v), want freed slot %d", got, ok, freed)
	}
	if _, ok := p.SlotFor(key(3)); ok {
		t.Error("released key still mapped")
	}
	if src.gets != 1 {
		t.Errorf("source fetched %d chunks, want 1", src.gets)
	}
	st = p.Stats()
	if st.Uploads != 5 || st.Releases != 1 || st.ExhaustedFrames != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	p, _, src := newTestPool(t, 4)
	visible := nodes(key(0), key(1))
	p.Reconcile(visible)
	src.gets = 0
	p.Reconcile(visible)
	if src.gets != 0 || p.Stats().Uploads != 2 {
		t.Errorf("second Reconcile re-uploaded: gets = %d, stats = %+v", src.gets, p.Stats())
	}
}

func TestReconcileDuplicateNodes(t *testing.T) {
	p, _, _ := newTestPool(t, 4)
	p.Reconcile(nodes(key(1), key(1), key(1)))
	checkBijection(t, p)
	if p.Occupied() != 1 {
		t.Errorf("Occupied() = %d, want 1", p.Occupied())
	}
}

func TestReconcileEmptyReleasesAll(t *testing.T) {
	p, _, _ := newTestPool(t, 3)
	p.Reconcile(nodes(key(0), key(1), key(2)))
	p.Reconcile(nil)
	checkBijection(t, p)
	if p.Occupied() != 0 || p.Free() != 3 || p.Stats().Releases != 3 {
		t.Errorf("occupied = %d, free = %d, stats = %+v", p.Occupied(), p.Free(), p.Stats())
	}
}

func TestUploadFailureReturnsSlot(t *testing.T) {
	p, backend, _ := newTestPool(t, 2)
	backend.FailUpload = errors.New("device lost")

	p.Reconcile(nodes(key(0)))
	checkBijection(t, p)
	if _, ok := p.SlotFor(key(0)); ok {
		t.Error("key mapped after failed upload")
	}
	if p.Free() != 2 || p.Stats().UploadErrors != 1 {
		t.Errorf("free = %d, stats = %+v", p.Free(), p.Stats())
	}

	backend.FailUpload = nil
	p.Reconcile(nodes(key(0)))
	if _, ok := p.SlotFor(key(0)); !ok {
		t.Error("key not mapped after recovery")
	}
}

func TestUploadWritesEncodedPixels(t *testing.T) {
	p, backend, src := newTestPool(t, 2)
	p.Reconcile(nodes(key(5)))
	slot, ok := p.SlotFor(key(5))
	if !ok {
		t.Fatal("key not resident")
	}
	want := ColorEncoder{}.Encode(src.Get(key(5)), nil)
	got := backend.Layer(slot)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	p, _, _ := newTestPool(t, 3)
	p.Reconcile(nodes(key(0), key(1)))
	p.Reset()
	checkBijection(t, p)
	if p.Occupied() != 0 || p.Free() != 3 {
		t.Errorf("after Reset: occupied = %d, free = %d", p.Occupied(), p.Free())
	}
	if _, ok := p.SlotFor(key(0)); ok {
		t.Error("mapping survived Reset")
	}
}

func TestExhaustionLogsOncePerEpisode(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Use(zap.New(core))
	defer logger.Use(nil)

	p, _, _ := newTestPool(t, 1)
	over := nodes(key(0), key(1))
	p.Reconcile(over)
	p.Reconcile(over)
	p.Reconcile(nodes(key(0)))

	if n := logs.FilterMessage("Texture pool exhausted").Len(); n != 1 {
		t.Errorf("exhausted logged %d times, want 1", n)
	}
	if n := logs.FilterMessage("Texture pool recovered").Len(); n != 1 {
		t.Errorf("recovered logged %d times, want 1", n)
	}
	if n := logs.FilterField(logger.Component("pool")).Len(); n != 2 {
		t.Errorf("pool-tagged entries = %d, want 2", n)
	}
	if st := p.Stats(); st.ExhaustedFrames != 2 || st.Exhausted != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}
