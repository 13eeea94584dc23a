//go:build opencv

package recorder

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// FrameSource supplies the next captured frame. The caller owns the
// returned Mat and must close it. An error means the source is exhausted or
// failed; the recorder does not retry.
type FrameSource interface {
	ReadFrame() (gocv.Mat, error)
}

// timestamp strip appended below each frame
const (
	textRowHeight = 28
	textMargin    = 6
	timeLayout    = "2006-01-02 15:04:05 UTC"
)

// EpisodeRecorder encodes motion episodes to video files.
type EpisodeRecorder struct {
	OutputDir   string
	Codec       string
	FallbackFPS float64

	now func() time.Time // stubbed in tests
}

func NewEpisodeRecorder(outputDir, codec string, fallbackFPS float64) *EpisodeRecorder {
	if codec == "" {
		codec = "mp4v"
	}
	if fallbackFPS <= 0 {
		fallbackFPS = DefaultFallbackFPS
	}
	return &EpisodeRecorder{
		OutputDir:   outputDir,
		Codec:       codec,
		FallbackFPS: fallbackFPS,
		now:         time.Now,
	}
}

// Record buffers frames from src until duration has elapsed on the wall
// clock, the source fails, or ctx is cancelled. Each frame is stamped with
// its UTC capture time on a strip below the image. The buffer is then
// encoded at the effective frame rate computed from the observed cadence.
//
// A source failure ends collection early and the partial clip is still
// encoded. An episode that collects no frames writes no file and returns
// with Empty set; that is a reported condition, not an error.
func (r *EpisodeRecorder) Record(ctx context.Context, src FrameSource, duration time.Duration) (*Episode, error) {
	start := r.now()
	ep := &Episode{ID: uuid.New(), Start: start}

	log.Info().Str("episode", ep.ID.String()).Dur("duration", duration).Msg("Recording episode")

	var frames []gocv.Mat
	defer func() {
		for i := range frames {
			frames[i].Close()
		}
	}()

collect:
	for r.now().Sub(start) < duration {
		select {
		case <-ctx.Done():
			log.Info().Str("episode", ep.ID.String()).Msg("Recording interrupted")
			break collect
		default:
		}

		frame, err := src.ReadFrame()
		if err != nil {
			// keep the partial clip rather than discarding the episode
			log.Warn().Str("episode", ep.ID.String()).Err(err).Int("frames", len(frames)).
				Msg("Frame source failed during episode")
			break
		}
		frames = append(frames, r.annotate(frame, r.now()))
		frame.Close()
	}

	ep.Elapsed = r.now().Sub(start)
	ep.Frames = len(frames)
	ep.FPS = EffectiveFPS(ep.Frames, ep.Elapsed, r.FallbackFPS)

	if len(frames) == 0 {
		ep.Empty = true
		log.Warn().Str("episode", ep.ID.String()).Msg("Episode collected no frames, skipping encode")
		return ep, nil
	}

	path := filepath.Join(r.OutputDir, ClipName(start))
	width, height := frames[0].Cols(), frames[0].Rows()

	writer, err := gocv.VideoWriterFile(path, r.Codec, ep.FPS, width, height, true)
	if err != nil {
		return ep, fmt.Errorf("open video writer %s: %w", path, err)
	}
	defer writer.Close()

	if !writer.IsOpened() {
		return ep, fmt.Errorf("video writer %s not opened", path)
	}

	for i := range frames {
		if err := writer.Write(frames[i]); err != nil {
			return ep, fmt.Errorf("write frame %d to %s: %w", i, path, err)
		}
	}

	ep.File = path
	log.Info().
		Str("episode", ep.ID.String()).
		Str("file", path).
		Int("frames", ep.Frames).
		Float64("fps", ep.FPS).
		Dur("elapsed", ep.Elapsed).
		Msg("Episode saved")
	return ep, nil
}

// annotate extends the frame canvas below the image and renders the capture
// time centered on the new strip. The caller owns the returned Mat.
func (r *EpisodeRecorder) annotate(frame gocv.Mat, captured time.Time) gocv.Mat {
	canvas := gocv.NewMat()
	gocv.CopyMakeBorder(frame, &canvas, 0, textRowHeight+textMargin, 0, 0,
		gocv.BorderConstant, color.RGBA{})

	label := captured.UTC().Format(timeLayout)
	size := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.6, 1)
	origin := image.Pt((canvas.Cols()-size.X)/2, frame.Rows()+textRowHeight)
	gocv.PutText(&canvas, label, origin, gocv.FontHersheySimplex, 0.6,
		color.RGBA{R: 255, G: 255, B: 255}, 1)
	return canvas
}
