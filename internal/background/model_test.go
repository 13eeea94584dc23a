//go:build opencv

package background

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestApplyReturnsMaskOfFrameDimensions(t *testing.T) {
	m := New()
	defer m.Close()

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	mask, err := m.Apply(frame)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, 120, mask.Rows())
	assert.Equal(t, 160, mask.Cols())
	assert.Equal(t, uint64(1), m.Frames())
}

func TestApplyRejectsDimensionChange(t *testing.T) {
	m := New()
	defer m.Close()

	first := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer first.Close()
	mask, err := m.Apply(first)
	require.NoError(t, err)
	mask.Close()

	second := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer second.Close()
	rejected, err := m.Apply(second)
	rejected.Close() // error branches still hand back a closeable placeholder
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions changed")
	assert.Equal(t, uint64(1), m.Frames(), "a rejected frame must not advance the model")
}

func TestApplyRejectsEmptyFrame(t *testing.T) {
	m := New()
	defer m.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	rejected, err := m.Apply(empty)
	rejected.Close()
	assert.Error(t, err)
}

func TestApplySettlesOnStaticScene(t *testing.T) {
	m := New()
	defer m.Close()

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	// after warm-up a static scene should classify as almost all background
	var lastForeground int
	for i := 0; i < 50; i++ {
		mask, err := m.Apply(frame)
		require.NoError(t, err)
		lastForeground = gocv.CountNonZero(mask)
		mask.Close()
	}

	assert.Less(t, lastForeground, 120*160/100, "static scene should settle below 1%% foreground")
}
