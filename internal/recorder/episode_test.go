package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveFPS(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		elapsed  time.Duration
		fallback float64
		want     float64
	}{
		{"nominal cadence", 50, 5 * time.Second, 10, 10},
		{"slow source", 10, 5 * time.Second, 10, 2},
		{"fast source", 150, 5 * time.Second, 10, 30},
		{"zero elapsed falls back", 50, 0, 10, 10},
		{"zero frames falls back", 0, 5 * time.Second, 10, 10},
		{"negative elapsed falls back", 50, -time.Second, 10, 10},
		{"invalid fallback uses default", 0, 0, 0, DefaultFallbackFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EffectiveFPS(tt.frames, tt.elapsed, tt.fallback), 1e-9)
		})
	}
}

func TestClipName(t *testing.T) {
	start := time.Date(2023, 9, 6, 16, 14, 9, 0, time.UTC)
	assert.Equal(t, "23-09-06T161409.mp4", ClipName(start))
}

func TestClipNameUsesUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	start := time.Date(2023, 9, 6, 18, 14, 9, 0, loc)
	assert.Equal(t, "23-09-06T161409.mp4", ClipName(start))
}

func TestClipNameSecondResolutionCollision(t *testing.T) {
	a := time.Date(2023, 9, 6, 16, 14, 9, 100, time.UTC)
	b := time.Date(2023, 9, 6, 16, 14, 9, 999999999, time.UTC)
	// same second means same file; last writer wins by design
	assert.Equal(t, ClipName(a), ClipName(b))
}
