// Package world ties visibility, the chunk cache and the texture pool into
// one per-frame streaming step.
package world

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/world/cache"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// Streamer owns the per-frame pipeline state. It is driven from the frame
// loop and is not safe for concurrent use.
type Streamer struct {
	selector *quadtree.Selector
	cache    *cache.Cache
	pool     *texture.Pool

	visible []quadtree.Node
	frame   uint64
}

// NewStreamer wires the three stages together. pool may be nil for
// headless use, in which case Step only selects and prunes.
func NewStreamer(sel *quadtree.Selector, c *cache.Cache, pool *texture.Pool) *Streamer {
	return &Streamer{selector: sel, cache: c, pool: pool}
}

// Step runs one frame: select the visible set, evict stale cache entries,
// then reconcile texture slots. It returns the visible nodes in draw order.
func (s *Streamer) Step(center gmath.Vec2, zoom, aspect float64) []quadtree.Node {
	start := time.Now()
	s.frame++

	s.visible = s.selector.Compute(center, zoom, aspect)
	selected := time.Now()

	evicted := s.cache.Prune(quadtree.Keys(s.visible))
	pruned := time.Now()

	if s.pool != nil {
		s.pool.Reconcile(s.visible)
	}

	if ce := logger.Log.Check(zap.DebugLevel, "Frame streamed"); ce != nil {
		ce.Write(
			logger.Component("streamer"),
			zap.Uint64("frame", s.frame),
			zap.Int("visible", len(s.visible)),
			zap.Int("evicted", evicted),
			zap.Int("cached", s.cache.Len()),
			zap.Duration("select", selected.Sub(start)),
			zap.Duration("prune", pruned.Sub(selected)),
			zap.Duration("upload", time.Since(pruned)),
		)
	}
	return s.visible
}

// Visible returns the nodes selected by the last Step.
func (s *Streamer) Visible() []quadtree.Node { return s.visible }

// Cache returns the chunk cache.
func (s *Streamer) Cache() *cache.Cache { return s.cache }

// Pool returns the texture pool, or nil when headless.
func (s *Streamer) Pool() *texture.Pool { return s.pool }

// Selector returns the visibility selector.
func (s *Streamer) Selector() *quadtree.Selector { return s.selector }

// Reload drops every resident chunk and texture mapping so the next Step
// reloads from storage.
func (s *Streamer) Reload() {
	s.cache.Clear()
	if s.pool != nil {
		s.pool.Reset()
	}
	s.visible = nil
}
