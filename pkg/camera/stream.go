//go:build opencv

package camera

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// Stream wraps a single open capture device. It is not safe for concurrent
// use; the detection loop is the only reader.
type Stream struct {
	Path       string
	capture    *gocv.VideoCapture
	isOpen     bool
	frameCount int64
}

// StreamInfo reports the capture properties of an open stream.
type StreamInfo struct {
	Width  int
	Height int
	FPS    float64
}

func NewStream(path string) *Stream {
	return &Stream{Path: path}
}

// Open opens the device node for capture.
func (s *Stream) Open() error {
	log.Info().Str("device", s.Path).Msg("Opening capture device")

	capture, err := gocv.OpenVideoCapture(s.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open %s: device not ready", s.Path)
	}

	s.capture = capture
	s.isOpen = true
	return nil
}

// OpenDevice tries each candidate path of a device in order and returns the
// first stream that opens.
func OpenDevice(dev Device) (*Stream, error) {
	var lastErr error
	for _, path := range dev.Paths {
		s := NewStream(path)
		if err := s.Open(); err != nil {
			lastErr = err
			continue
		}
		log.Info().Str("name", dev.Name).Str("path", path).Msg("Camera device open")
		return s, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("device %q has no capture paths", dev.Name)
	}
	return nil, lastErr
}

// Info returns capture dimensions and the driver-reported nominal rate.
func (s *Stream) Info() StreamInfo {
	if !s.isOpen || s.capture == nil {
		return StreamInfo{}
	}
	return StreamInfo{
		Width:  int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(s.capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    s.capture.Get(gocv.VideoCaptureFPS),
	}
}

// ReadFrame blocks until the next frame is available and returns a copy the
// caller owns. A failed or empty read is an error; the stream does not
// retry.
func (s *Stream) ReadFrame() (gocv.Mat, error) {
	if !s.isOpen || s.capture == nil {
		return gocv.NewMat(), fmt.Errorf("stream %s not open", s.Path)
	}

	frame := gocv.NewMat()
	if !s.capture.Read(&frame) {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("read frame from %s failed", s.Path)
	}
	if frame.Empty() {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("empty frame from %s", s.Path)
	}

	s.frameCount++
	return frame, nil
}

// Close releases the capture handle.
func (s *Stream) Close() error {
	if s.capture != nil {
		if err := s.capture.Close(); err != nil {
			return err
		}
		s.capture = nil
	}
	s.isOpen = false
	log.Info().Str("device", s.Path).Int64("frames", s.frameCount).Msg("Capture device closed")
	return nil
}
