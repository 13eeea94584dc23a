//go:build opencv

package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixge/fgprof"
	"github.com/rs/zerolog/log"

	"github.com/sentinelcam/sentinel/internal/alert"
	"github.com/sentinelcam/sentinel/internal/background"
	"github.com/sentinelcam/sentinel/internal/config"
	"github.com/sentinelcam/sentinel/internal/health"
	"github.com/sentinelcam/sentinel/internal/logger"
	"github.com/sentinelcam/sentinel/internal/recorder"
	"github.com/sentinelcam/sentinel/internal/sentinel"
	"github.com/sentinelcam/sentinel/pkg/camera"
)

const version = "0.2.0"

func main() {
	logger.Init(os.Getenv("SENTINEL_LOG_LEVEL"))

	// profiling endpoint, handy for chasing capture stalls in the field
	go func() {
		http.DefaultServeMux.Handle("/debug/fgprof", fgprof.Handler())
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			log.Error().Err(err).Msg("Profiling server error")
		}
	}()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	hostname, _ := os.Hostname()
	log.Info().Str("version", version).Str("host", hostname).Msg("Starting sentinel")
	log.Info().
		Str("recipient", cfg.Alert.Recipient).
		Float64("threshold", cfg.Motion.Threshold).
		Int("launch_delay_s", cfg.Motion.LaunchDelaySeconds).
		Int("record_duration_s", cfg.Record.DurationSeconds).
		Bool("display", cfg.Display).
		Msg("Options")
	if cfg.Display {
		log.Info().Msg("Press 'q' to quit")
	}

	stream, err := openStream(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("No camera available")
	}
	defer stream.Close()

	info := stream.Info()
	log.Info().
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("nominal_fps", info.FPS).
		Msg("Capture ready")

	checker := health.NewChecker(cfg.AlertTimeout())
	if result := checker.CheckDevice(stream.Path); !result.OK {
		log.Warn().Str("error", result.Error).Msg("Device health check failed")
	}
	if cfg.Alert.Recipient != "" {
		if result := checker.CheckTransport(cfg.Alert.Binary); !result.OK {
			log.Warn().Str("error", result.Error).Msg("Messaging transport unavailable, alerts will fail")
		} else {
			log.Info().Str("transport", result.Detail).Msg("Messaging transport ready")
		}
	}

	model := background.New()
	defer model.Close()

	transport := alert.NewSignalCLI(cfg.Alert.Binary, cfg.AlertTimeout())
	dispatcher := alert.NewDispatcher(transport, cfg.Alert.Sender, cfg.Alert.Recipient, cfg.Cooldown())

	episodes := recorder.NewEpisodeRecorder(cfg.Record.OutputPath, cfg.Record.Codec, cfg.Record.FallbackFPS)

	loop := sentinel.New(sentinel.Options{
		Threshold:      cfg.Motion.Threshold,
		LaunchDelay:    cfg.LaunchDelay(),
		RecordDuration: cfg.RecordDuration(),
		Display:        cfg.Display,
		Hostname:       hostname,
	}, stream, model, dispatcher, episodes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil {
		stream.Close()
		log.Fatal().Err(err).Msg("Detection loop failed")
	}
	log.Info().Msg("Shutting down")
}

// openStream opens the configured device path, or enumerates devices and
// prompts for a selection when none is configured.
func openStream(cfg *config.Config) (*camera.Stream, error) {
	if cfg.Camera.Device != "" {
		stream := camera.NewStream(cfg.Camera.Device)
		if err := stream.Open(); err != nil {
			return nil, err
		}
		return stream, nil
	}

	devices := camera.ListDevices()
	dev, err := camera.SelectDevice(devices, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	return camera.OpenDevice(dev)
}
