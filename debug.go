package treebloom

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	updateTime    time.Duration
	drawTime      time.Duration
	instanceCount int
	triangleCount int
	drawCallCount int
}

// debugLog prints timing and instance stats to stderr.
func (s *Scene) debugLog() {
	if !s.debug {
		return
	}
	st := s.stats
	_, _ = fmt.Fprintf(os.Stderr,
		"[treebloom] update: %v | draw: %v | phase: %s %.3f\n",
		st.updateTime, st.drawTime, s.frame.Phase, s.frame.Progress)
	_, _ = fmt.Fprintf(os.Stderr,
		"[treebloom] instances: %d | triangles: %d | draw calls: %d\n",
		st.instanceCount, st.triangleCount, st.drawCallCount)
}

// debugPhase reports a phase change on stderr.
func (s *Scene) debugPhase(from, to Phase) {
	_, _ = fmt.Fprintf(os.Stderr, "[treebloom] phase %s -> %s at t=%.2fs (progress %.3f)\n",
		from, to, s.time, s.machine.Progress())
}

// frameInstanceCount counts every instance in f, the satellite and sparkle
// clouds included.
func frameInstanceCount(f *Frame) int {
	n := len(f.Particles) + len(f.Ornaments) + len(f.Satellites) +
		len(f.Photos) + len(f.Stars) + len(f.Sparkles)
	if f.Topper.Visible {
		n += 1 + len(f.Topper.Sparkles)
	}
	return n
}
