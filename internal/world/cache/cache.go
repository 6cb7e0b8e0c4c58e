// Package cache keeps the chunks the viewer currently needs in memory.
//
// A lookup tries RAM, then the store, then the generator. Generated chunks
// are dirty until saved. The cache is owned by the frame loop and is not
// safe for concurrent use.
package cache

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/storage"
	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// Generator produces chunk data from scratch. Stored chunks are only
// accepted when they match its Resolution.
type Generator interface {
	Generate(key chunk.Key) *chunk.Data
	Resolution() int
}

// WritePolicy decides what Prune does with dirty entries.
type WritePolicy int

const (
	// WriteBack drops dirty stale entries; only SaveAll persists.
	WriteBack WritePolicy = iota
	// WriteThrough saves dirty stale entries before evicting them.
	WriteThrough
)

func (p WritePolicy) String() string {
	switch p {
	case WriteBack:
		return "write-back"
	case WriteThrough:
		return "write-through"
	default:
		return fmt.Sprintf("WritePolicy(%d)", int(p))
	}
}

// ParseWritePolicy accepts the config spelling of a policy.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch strings.ToLower(s) {
	case "write-back", "writeback", "":
		return WriteBack, nil
	case "write-through", "writethrough":
		return WriteThrough, nil
	default:
		return WriteBack, fmt.Errorf("unknown write policy %q", s)
	}
}

// Stats are cumulative counters since New or the last Clear.
type Stats struct {
	Hits         int
	Loads        int
	Generated    int
	LoadErrors   int
	Evicted      int
	DirtyDropped int
	Saved        int
	SaveErrors   int
}

// Option configures a Cache.
type Option func(*Cache)

// WithWritePolicy sets the prune policy. The default is WriteBack.
func WithWritePolicy(p WritePolicy) Option {
	return func(c *Cache) { c.policy = p }
}

// Cache maps chunk keys to resident data.
type Cache struct {
	store   storage.Store
	gen     Generator
	policy  WritePolicy
	entries map[chunk.Key]*chunk.Data
	stats   Stats

	// scratch set reused by Prune
	keep map[chunk.Key]struct{}
}

// New returns an empty cache backed by store and gen.
func New(store storage.Store, gen Generator, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		gen:     gen,
		entries: make(map[chunk.Key]*chunk.Data),
		keep:    make(map[chunk.Key]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the data for key, loading or generating it on a miss.
// It panics if key is invalid.
func (c *Cache) Get(key chunk.Key) *chunk.Data {
	key.MustValidate()
	if d, ok := c.entries[key]; ok {
		c.stats.Hits++
		return d
	}

	d, ok, err := c.store.LoadChunk(key)
	if err == nil && ok && d.Resolution() != c.gen.Resolution() {
		err = fmt.Errorf("stored resolution %d, want %d", d.Resolution(), c.gen.Resolution())
	}
	if err != nil {
		c.stats.LoadErrors++
		logger.Warn("Chunk load failed, regenerating", logger.Component("cache"), logger.Key(key), zap.Error(err))
	}
	if ok && err == nil {
		c.stats.Loads++
		d.MarkClean()
	} else {
		d = c.gen.Generate(key)
		d.MarkDirty()
		c.stats.Generated++
	}
	c.entries[key] = d
	return d
}

// SaveAll writes every resident entry, dirty or not. Entries that fail to
// save stay dirty; their errors are joined into the result.
func (c *Cache) SaveAll() (int, error) {
	var errs []error
	saved := 0
	for key, d := range c.entries {
		if err := c.store.SaveChunk(d); err != nil {
			c.stats.SaveErrors++
			errs = append(errs, fmt.Errorf("save %v: %w", key, err))
			continue
		}
		d.MarkClean()
		saved++
	}
	c.stats.Saved += saved
	if len(errs) > 0 {
		logger.Error("Chunk save failed", logger.Component("cache"), zap.Int("failed", len(errs)), zap.Int("saved", saved))
	}
	return saved, errors.Join(errs...)
}

// Prune evicts every entry whose key is not in visible and returns how many
// were evicted.
func (c *Cache) Prune(visible []chunk.Key) int {
	clear(c.keep)
	for _, k := range visible {
		c.keep[k] = struct{}{}
	}

	evicted := 0
	for key, d := range c.entries {
		if _, ok := c.keep[key]; ok {
			continue
		}
		if d.IsDirty() {
			c.evictDirty(key, d)
		}
		delete(c.entries, key)
		evicted++
	}
	c.stats.Evicted += evicted
	return evicted
}

func (c *Cache) evictDirty(key chunk.Key, d *chunk.Data) {
	if c.policy != WriteThrough {
		c.stats.DirtyDropped++
		return
	}
	if err := c.store.SaveChunk(d); err != nil {
		c.stats.SaveErrors++
		c.stats.DirtyDropped++
		logger.Error("Chunk save on evict failed", logger.Component("cache"), logger.Key(key), zap.Error(err))
		return
	}
	d.MarkClean()
	c.stats.Saved++
}

// Len returns the number of resident entries.
func (c *Cache) Len() int { return len(c.entries) }

// Contains reports whether key is resident.
func (c *Cache) Contains(key chunk.Key) bool {
	_, ok := c.entries[key]
	return ok
}

// Clear drops every entry without saving and resets Stats.
func (c *Cache) Clear() {
	clear(c.entries)
	c.stats = Stats{}
}

// Policy returns the prune write policy.
func (c *Cache) Policy() WritePolicy { return c.policy }

// Stats returns a copy of the counters.
func (c *Cache) Stats() Stats { return c.stats }
