package h2d

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame renderer metrics. Timing is only recorded when
// debug logging is on.
type debugStats struct {
	frameTime time.Duration
	entities  int
	drawCalls int
	lights    int
}

// debugLog writes frame stats at debug level.
func (r *Renderer) debugLog(stats debugStats) {
	if !r.debug {
		return
	}
	r.log.Debug("frame",
		zap.Duration("time", stats.frameTime),
		zap.Int("entities", stats.entities),
		zap.Int("draw_calls", stats.drawCalls),
		zap.Int("lights", stats.lights))
}

// Stats returns the entity, draw call and visible light counts of the last
// rendered frame.
func (r *Renderer) Stats() (entities, drawCalls, lights int) {
	return r.stats.entities, r.stats.drawCalls, r.stats.lights
}

// debugMaxTreeDepth is the depth past which InitAllChildren warns.
const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns when e sits deeper than debugMaxTreeDepth.
func debugCheckTreeDepth(w *World, e Entity, log *zap.Logger) {
	depth := 0
	for p, ok := e, true; ok; p, ok = Parent(w, p) {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.Uint32("entity", uint32(e.Id())))
	}
}

// debugMaxChildCount is the child count past which InitAllChildren warns.
const debugMaxChildCount = 1000

// debugCheckChildCount warns when e has more than debugMaxChildCount children.
func debugCheckChildCount(w *World, e Entity, log *zap.Logger) {
	if n := len(Children(w, e)); n > debugMaxChildCount {
		log.Warn("child count exceeds threshold",
			zap.Int("children", n),
			zap.Int("threshold", debugMaxChildCount),
			zap.Uint32("entity", uint32(e.Id())))
	}
}
