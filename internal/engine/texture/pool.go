// Package texture manages the fixed set of GPU texture slots that hold
// visible chunks.
package texture

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/world/chunk"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
)

// ChunkSource supplies chunk data for upload. *cache.Cache satisfies it.
type ChunkSource interface {
	Get(key chunk.Key) *chunk.Data
}

// Encoder converts chunk data to RGBA8 pixels, reusing dst when it has room.
type Encoder interface {
	Encode(d *chunk.Data, dst []byte) []byte
}

// Backend owns the slot storage. Upload fully overwrites one slot.
type Backend interface {
	Layers() int
	Upload(slot, res int, rgba []byte) error
}

// PoolStats are cumulative counters since NewPool.
type PoolStats struct {
	Uploads         int
	Releases        int
	Exhausted       int // keys skipped for lack of a free slot
	ExhaustedFrames int
	UploadErrors    int
}

// Pool assigns chunk keys to a fixed number of slots. Every slot is either
// on the free list or mapped to exactly one key.
type Pool struct {
	capacity int
	backend  Backend
	src      ChunkSource
	enc      Encoder

	slots    map[chunk.Key]int
	owner    []chunk.Key
	occupied []bool
	free     []int

	needed    map[chunk.Key]struct{}
	pixels    []byte
	exhausted bool
	stats     PoolStats
}

// NewPool returns a pool with all capacity slots free.
func NewPool(capacity int, backend Backend, src ChunkSource, enc Encoder) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("texture pool: capacity %d must be positive", capacity)
	}
	if backend.Layers() < capacity {
		return nil, fmt.Errorf("texture pool: backend has %d layers, need %d", backend.Layers(), capacity)
	}
	p := &Pool{
		capacity: capacity,
		backend:  backend,
		src:      src,
		enc:      enc,
		slots:    make(map[chunk.Key]int, capacity),
		owner:    make([]chunk.Key, capacity),
		occupied: make([]bool, capacity),
		free:     make([]int, 0, capacity),
		needed:   make(map[chunk.Key]struct{}, capacity),
	}
	p.Reset()
	return p, nil
}

// Reconcile releases slots whose keys are no longer visible, then uploads
// unmapped visible keys in node order until the free list runs out.
func (p *Pool) Reconcile(nodes []quadtree.Node) {
	clear(p.needed)
	for _, n := range nodes {
		p.needed[n.Key] = struct{}{}
	}

	for slot := 0; slot < p.capacity; slot++ {
		if !p.occupied[slot] {
			continue
		}
		if _, ok := p.needed[p.owner[slot]]; ok {
			continue
		}
		p.release(slot)
	}

	skipped := 0
	for _, n := range nodes {
		if _, ok := p.slots[n.Key]; ok {
			continue
		}
		if len(p.free) == 0 {
			skipped++
			continue
		}
		p.assign(n.Key)
	}
	p.trackExhaustion(skipped, len(nodes))
}

func (p *Pool) release(slot int) {
	delete(p.slots, p.owner[slot])
	p.owner[slot] = chunk.Key{}
	p.occupied[slot] = false
	p.free = append(p.free, slot)
	p.stats.Releases++
}

func (p *Pool) assign(key chunk.Key) {
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	d := p.src.Get(key)
	p.pixels = p.enc.Encode(d, p.pixels)
	if err := p.backend.Upload(slot, d.Resolution(), p.pixels); err != nil {
		p.free = append(p.free, slot)
		p.stats.UploadErrors++
		logger.Error("Texture upload failed", logger.Component("pool"), logger.Key(key), zap.Int("slot", slot), zap.Error(err))
		return
	}

	p.slots[key] = slot
	p.owner[slot] = key
	p.occupied[slot] = true
	p.stats.Uploads++
}

func (p *Pool) trackExhaustion(skipped, visible int) {
	if skipped > 0 {
		p.stats.Exhausted += skipped
		p.stats.ExhaustedFrames++
		if !p.exhausted {
			p.exhausted = true
			logger.Warn("Texture pool exhausted",
				logger.Component("pool"),
				zap.Int("capacity", p.capacity),
				zap.Int("visible", visible),
				zap.Int("skipped", skipped))
		}
		return
	}
	if p.exhausted {
		p.exhausted = false
		logger.Info("Texture pool recovered", logger.Component("pool"), zap.Int("visible", visible))
	}
}

// SlotFor returns the slot holding key.
func (p *Pool) SlotFor(key chunk.Key) (int, bool) {
	slot, ok := p.slots[key]
	return slot, ok
}

// Reset drops every mapping. Slot contents are left as they are.
func (p *Pool) Reset() {
	clear(p.slots)
	p.free = p.free[:0]
	for i := 0; i < p.capacity; i++ {
		p.owner[i] = chunk.Key{}
		p.occupied[i] = false
		p.free = append(p.free, i)
	}
	p.exhausted = false
}

func (p *Pool) Capacity() int { return p.capacity }

func (p *Pool) Occupied() int { return len(p.slots) }

func (p *Pool) Free() int { return len(p.free) }

// Stats returns a copy of the counters.
func (p *Pool) Stats() PoolStats { return p.stats }
