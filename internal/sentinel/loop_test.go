//go:build opencv

package sentinel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/sentinelcam/sentinel/internal/alert"
	"github.com/sentinelcam/sentinel/internal/recorder"
)

// loopSource yields a fixed number of frames, then fails like an exhausted
// camera so Run returns on its own.
type loopSource struct {
	reads int
	limit int
}

func (s *loopSource) ReadFrame() (gocv.Mat, error) {
	if s.reads >= s.limit {
		return gocv.NewMat(), errors.New("source exhausted")
	}
	s.reads++
	return gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3), nil
}

// passClassifier returns an empty mask for every frame.
type passClassifier struct{ err error }

func (c *passClassifier) Apply(frame gocv.Mat) (gocv.Mat, error) {
	if c.err != nil {
		return gocv.NewMat(), c.err
	}
	return gocv.NewMatWithSize(frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC1), nil
}

type fakeNotifier struct{ calls int }

func (n *fakeNotifier) Notify(context.Context, string) bool {
	n.calls++
	return true
}

// fakeRecorder records which scorer invocation triggered each episode.
type fakeRecorder struct {
	calls       int
	triggeredAt []int
	src         *loopSource
}

func (r *fakeRecorder) Record(context.Context, recorder.FrameSource, time.Duration) (*recorder.Episode, error) {
	r.calls++
	r.triggeredAt = append(r.triggeredAt, r.src.reads)
	return &recorder.Episode{Frames: 1}, nil
}

// scriptedScorer pops one score per frame; exhausted scripts score zero.
func scriptedScorer(scores []float64) func(gocv.Mat) (float64, gocv.PointsVector) {
	i := 0
	return func(gocv.Mat) (float64, gocv.PointsVector) {
		score := 0.0
		if i < len(scores) {
			score = scores[i]
			i++
		}
		return score, gocv.NewPointsVector()
	}
}

func newTestLoop(src *loopSource, scores []float64, threshold float64) (*Loop, *fakeNotifier, *fakeRecorder) {
	notifier := &fakeNotifier{}
	rec := &fakeRecorder{src: src}
	l := New(Options{Threshold: threshold, RecordDuration: time.Second},
		src, &passClassifier{}, notifier, rec)
	l.scorer = scriptedScorer(scores)
	return l, notifier, rec
}

func TestRunTriggersExactlyAtThresholdCrossing(t *testing.T) {
	src := &loopSource{limit: 5}
	// area 60000 appears on the third frame with threshold 50000
	l, notifier, rec := newTestLoop(src, []float64{100, 49999, 60000, 100, 100}, 50000)

	require.NoError(t, l.Run(context.Background()))

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, []int{3}, rec.triggeredAt, "episode must start at the crossing frame, not before")
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, StateStopped, l.State())
}

func TestRunThresholdIsStrict(t *testing.T) {
	src := &loopSource{limit: 3}
	l, notifier, rec := newTestLoop(src, []float64{50000, 50000, 50000}, 50000)

	require.NoError(t, l.Run(context.Background()))

	assert.Zero(t, rec.calls, "score equal to threshold must not trigger")
	assert.Zero(t, notifier.calls)
}

func TestRunStopsGracefullyOnReadFailure(t *testing.T) {
	src := &loopSource{limit: 0}
	l, _, rec := newTestLoop(src, nil, 50000)

	assert.NoError(t, l.Run(context.Background()), "failed read is end-of-stream, not an error")
	assert.Zero(t, rec.calls)
	assert.Equal(t, StateStopped, l.State())
}

func TestRunReturnsClassifierError(t *testing.T) {
	src := &loopSource{limit: 3}
	l, _, _ := newTestLoop(src, nil, 50000)
	l.model = &passClassifier{err: errors.New("frame dimensions changed")}

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions changed")
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &loopSource{limit: 100}
	l, _, _ := newTestLoop(src, nil, 50000)

	require.NoError(t, l.Run(ctx))
	assert.Zero(t, src.reads, "no frames read after cancellation")
}

func TestRunAlertCooldownAcrossEpisodes(t *testing.T) {
	// every frame scores over threshold, so each watched frame starts an
	// episode; the dispatcher must still deliver only once per cooldown
	src := &loopSource{limit: 4}
	transport := &countingTransport{}
	dispatcher := alert.NewDispatcher(transport, "+15550001111", "+15552223333", time.Hour)

	rec := &fakeRecorder{src: src}
	l := New(Options{Threshold: 50000, RecordDuration: time.Second},
		src, &passClassifier{}, dispatcher, rec)
	l.scorer = scriptedScorer([]float64{60000, 60000, 60000, 60000})

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, 4, rec.calls, "every event records an episode")
	assert.Equal(t, 1, transport.calls, "only one delivery inside the cooldown window")
}

type countingTransport struct{ calls int }

func (c *countingTransport) Send(context.Context, string, string, string) error {
	c.calls++
	return nil
}
