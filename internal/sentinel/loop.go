//go:build opencv

// Package sentinel runs the detection loop: frames are pulled from the
// capture stream, classified against the background model, scored, and on a
// threshold crossing the alert dispatcher and evidence recorder are
// triggered before watching resumes.
package sentinel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/sentinelcam/sentinel/internal/motion"
	"github.com/sentinelcam/sentinel/internal/recorder"
)

// State is the loop's position in its lifecycle.
type State int

const (
	StateStarting State = iota
	StateWatching
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateWatching:
		return "watching"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Classifier feeds one frame to the background model and returns the
// foreground mask.
type Classifier interface {
	Apply(frame gocv.Mat) (gocv.Mat, error)
}

// Notifier dispatches a motion alert; the outcome never gates recording.
type Notifier interface {
	Notify(ctx context.Context, message string) bool
}

// Recorder captures one evidence episode from the frame source.
type Recorder interface {
	Record(ctx context.Context, src recorder.FrameSource, duration time.Duration) (*recorder.Episode, error)
}

// Options are the loop's immutable runtime parameters.
type Options struct {
	// Threshold is the motion score above which (strictly) an episode is
	// triggered.
	Threshold      float64
	LaunchDelay    time.Duration
	RecordDuration time.Duration
	Display        bool
	Hostname       string
}

// Loop is the single-threaded controller owning the pipeline components.
// All state is touched only from Run's goroutine.
type Loop struct {
	opts       Options
	source     recorder.FrameSource
	model      Classifier
	dispatcher Notifier
	recorder   Recorder
	window     *gocv.Window
	state      State

	// scorer is swappable for tests; motion.Score in production
	scorer func(gocv.Mat) (float64, gocv.PointsVector)
}

func New(opts Options, source recorder.FrameSource, model Classifier, dispatcher Notifier, rec Recorder) *Loop {
	return &Loop{
		opts:       opts,
		source:     source,
		model:      model,
		dispatcher: dispatcher,
		recorder:   rec,
		state:      StateStarting,
		scorer:     motion.Score,
	}
}

// State reports the loop's current state. Valid only from the loop's own
// goroutine or after Run has returned.
func (l *Loop) State() State {
	return l.state
}

// Run drives the loop until the context is cancelled, the user quits, the
// source fails, or a fatal configuration error occurs. A failed frame read
// while watching is treated as end-of-stream and stops the loop gracefully;
// only fatal errors (dimension changes mid-run) are returned.
func (l *Loop) Run(ctx context.Context) error {
	defer func() { l.state = StateStopped }()

	if l.opts.LaunchDelay > 0 {
		log.Info().Dur("delay", l.opts.LaunchDelay).Msg("Waiting launch delay")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.opts.LaunchDelay):
		}
	}

	if l.opts.Display {
		l.window = gocv.NewWindow("sentinel")
		defer l.window.Close()
	}

	log.Info().Float64("threshold", l.opts.Threshold).Msg("Watching for motion")
	l.state = StateWatching

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Interrupt received, stopping")
			return nil
		default:
		}

		frame, err := l.source.ReadFrame()
		if err != nil {
			log.Warn().Err(err).Msg("Frame read failed, treating as end of stream")
			return nil
		}

		mask, err := l.model.Apply(frame)
		if err != nil {
			mask.Close()
			frame.Close()
			return fmt.Errorf("classify frame: %w", err)
		}

		score, regions := l.scorer(mask)
		mask.Close()

		if score > l.opts.Threshold {
			l.onMotion(ctx, score)
		}

		if quit := l.display(frame, regions); quit {
			regions.Close()
			frame.Close()
			log.Info().Msg("Quit requested")
			return nil
		}

		regions.Close()
		frame.Close()
	}
}

// onMotion runs one recording episode: alert first (fire and forget), then
// the synchronous episode capture. Motion during the episode is not scored;
// one episode at a time.
func (l *Loop) onMotion(ctx context.Context, score float64) {
	l.state = StateRecording
	defer func() { l.state = StateWatching }()

	log.Info().Float64("score", score).Msg("Motion detected")

	message := fmt.Sprintf("%s %s motion detected",
		time.Now().UTC().Format("06-01-02T150405"), l.opts.Hostname)
	l.dispatcher.Notify(ctx, message)

	ep, err := l.recorder.Record(ctx, l.source, l.opts.RecordDuration)
	if err != nil {
		log.Error().Err(err).Msg("Episode failed")
		return
	}
	if ep.Empty {
		log.Warn().Str("episode", ep.ID.String()).Msg("Episode was empty, no clip saved")
	}
}

// display shows the current frame with region outlines and reports whether
// the quit key was pressed. No-op when the display is disabled.
func (l *Loop) display(frame gocv.Mat, regions gocv.PointsVector) bool {
	if l.window == nil {
		return false
	}
	motion.DrawRegions(&frame, regions)
	l.window.IMShow(frame)
	return l.window.WaitKey(1) == 'q'
}
