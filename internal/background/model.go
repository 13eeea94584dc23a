//go:build opencv

// Package background maintains an adaptive statistical model of the static
// scene and classifies each frame's pixels as foreground or background.
package background

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Model wraps a per-pixel mixture-of-Gaussians background estimator. It is
// stateful for the process lifetime and must see frames in capture order
// from a single caller.
type Model struct {
	mog2   gocv.BackgroundSubtractorMOG2
	width  int
	height int
	frames uint64
}

func New() *Model {
	return &Model{
		mog2: gocv.NewBackgroundSubtractorMOG2(),
	}
}

// Apply updates the background statistics with frame and returns the binary
// foreground mask. The caller owns the returned Mat and must close it.
//
// The first frame fixes the expected dimensions; a later frame of different
// dimensions is a fatal configuration error (the camera must not change
// resolution mid-run). Early frames seed the model, so classification during
// warm-up may over- or under-report foreground.
func (m *Model) Apply(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.NewMat(), fmt.Errorf("background: empty frame")
	}

	w, h := frame.Cols(), frame.Rows()
	if m.frames == 0 {
		m.width, m.height = w, h
	} else if w != m.width || h != m.height {
		return gocv.NewMat(), fmt.Errorf("background: frame dimensions changed from %dx%d to %dx%d",
			m.width, m.height, w, h)
	}

	mask := gocv.NewMat()
	m.mog2.Apply(frame, &mask)
	m.frames++
	return mask, nil
}

// Frames reports how many frames the model has absorbed.
func (m *Model) Frames() uint64 {
	return m.frames
}

func (m *Model) Close() {
	m.mog2.Close()
}
