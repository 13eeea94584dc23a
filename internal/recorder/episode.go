// Package recorder captures fixed-duration evidence clips after a motion
// event: frames are buffered with a timestamp overlay and encoded to a
// video file at the frame rate actually observed during capture.
package recorder

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFallbackFPS is the playback rate used when no meaningful rate can
// be computed from the episode itself.
const DefaultFallbackFPS = 10

// Episode describes one completed (possibly empty) recording episode.
type Episode struct {
	ID      uuid.UUID
	Start   time.Time
	File    string
	Frames  int
	Elapsed time.Duration
	FPS     float64
	// Empty is set when the source yielded no frames at all; no file is
	// written in that case.
	Empty bool
}

// EffectiveFPS derives the playback rate from the observed capture cadence.
// Zero elapsed time or an empty buffer falls back to the fixed default so a
// degenerate episode never produces an absurd playback speed.
func EffectiveFPS(frames int, elapsed time.Duration, fallback float64) float64 {
	if fallback <= 0 {
		fallback = DefaultFallbackFPS
	}
	if frames == 0 || elapsed <= 0 {
		return fallback
	}
	return float64(frames) / elapsed.Seconds()
}

// ClipName names an episode's output file from its UTC start time at second
// resolution. Two episodes starting within the same second collide and the
// last writer wins; callers needing uniqueness must add their own suffix.
func ClipName(start time.Time) string {
	return start.UTC().Format("06-01-02T150405") + ".mp4"
}
