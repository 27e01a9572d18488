// Package doorbell runs the sensor loop: it records a clip when motion is
// detected and sounds the buzzer when the joystick is pressed.
package doorbell

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"doorbell/config"
	"doorbell/internal/camera"
	"doorbell/internal/hw"
	"doorbell/internal/lib/sl"
	"doorbell/internal/model"
	"doorbell/internal/motionlog"
	"doorbell/internal/parse"
	"doorbell/internal/transcode"
)

// Devices groups the hardware the loop polls and drives.
type Devices struct {
	Motion   hw.DigitalSensor
	Joystick hw.AnalogSensor
	Buzzer   hw.Actuator
	Cameras  camera.Opener
}

// Service owns the camera lifecycle, the buzzer and the motion log.
type Service struct {
	cfg        *config.Config
	log        *slog.Logger
	dev        Devices
	transcoder transcode.Transcoder
	motionLog  motionlog.Appender

	now   func() time.Time
	sleep func(time.Duration)
}

// NewService creates the sensor loop.
func NewService(cfg *config.Config, log *slog.Logger, dev Devices, transcoder transcode.Transcoder, motionLog motionlog.Appender) *Service {
	return &Service{
		cfg:        cfg,
		log:        log,
		dev:        dev,
		transcoder: transcoder,
		motionLog:  motionLog,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Run polls until ctx is cancelled or a sensor fails. A camera still held
// when Run returns is released; its raw file is left as is.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("starting sensor loop", slog.Duration("poll_interval", s.cfg.Loop.PollInterval))

	var state model.State = model.Idle{}
	defer func() {
		if rec, ok := state.(*model.Recording); ok {
			s.log.Info("releasing camera on exit", slog.String("raw", rec.RawPath))
			s.release(rec.Camera)
		}
	}()

	timer := time.NewTimer(s.cfg.Loop.PollInterval)
	defer timer.Stop()

	for {
		var err error
		state, err = s.Step(ctx, state)
		if err != nil {
			return err
		}

		timer.Reset(s.cfg.Loop.PollInterval)
		select {
		case <-ctx.Done():
			s.log.Info("sensor loop shutting down")
			return nil
		case <-timer.C:
		}
	}
}

// Step performs one poll iteration and returns the next state. On error the
// returned state is still the one holding any open camera.
func (s *Service) Step(ctx context.Context, state model.State) (model.State, error) {
	if state == nil {
		state = model.Idle{}
	}

	motion, err := s.dev.Motion.Read()
	if err != nil {
		return state, fmt.Errorf("failed to read motion sensor: %w", err)
	}

	if _, idle := state.(model.Idle); idle && motion {
		s.log.Info("motion detected, turning camera on")
		state = s.startSession(ctx)
	}

	if rec, ok := state.(*model.Recording); ok && rec.Elapsed(s.now()) >= s.cfg.Loop.RecordDuration {
		s.log.Info("recording duration reached, turning camera off")
		s.Finish(ctx, rec)
		state = model.Idle{}
	}

	value, err := s.dev.Joystick.Read()
	if err != nil {
		return state, fmt.Errorf("failed to read joystick: %w", err)
	}
	if value > s.cfg.Sensors.JoystickThreshold {
		s.log.Info("joystick pressed, sounding buzzer", slog.Int("value", value))
		if err := s.ring(); err != nil {
			return state, err
		}
	}

	return state, nil
}

// startSession acquires the camera and starts recording. Any failure leaves
// the loop idle.
func (s *Service) startSession(ctx context.Context) model.State {
	const op = "doorbell.startSession"
	log := s.log.With(slog.String("op", op))

	for _, dir := range []string{s.cfg.Paths.RawDir, s.cfg.Paths.VideoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create output directory", slog.String("dir", dir), sl.Err(err))
			return model.Idle{}
		}
	}

	cam, err := s.dev.Cameras.Open(ctx)
	if err != nil {
		log.Error("failed to open camera", sl.Err(err))
		return model.Idle{}
	}

	paths := parse.NewClipPaths(s.cfg.Paths.RawDir, s.cfg.Paths.VideoDir, s.now())
	if err := cam.StartRecording(paths.Raw); err != nil {
		log.Error("failed to start recording", slog.String("raw", paths.Raw), sl.Err(err))
		s.release(cam)
		return model.Idle{}
	}

	log.Info("recording started", slog.String("raw", paths.Raw))
	return &model.Recording{
		Camera:        cam,
		StartedAt:     s.now(),
		RawPath:       paths.Raw,
		ContainerPath: paths.Container,
	}
}

// Outcome is what happened to a finished session's clip.
type Outcome int

const (
	// Saved means the container file was produced and logged.
	Saved Outcome = iota
	// Discarded means the clip was too short and the raw file was removed.
	Discarded
	// TranscodeFailed means the muxer failed; the raw file is kept.
	TranscodeFailed
)

func (o Outcome) String() string {
	switch o {
	case Saved:
		return "saved"
	case Discarded:
		return "discarded"
	case TranscodeFailed:
		return "transcode_failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// FinishResult describes a finished session.
type FinishResult struct {
	Elapsed time.Duration
	Outcome Outcome
	Err     error
}

// Finish stops the recording, keeps or discards the clip depending on how
// long it ran, and releases the camera.
func (s *Service) Finish(ctx context.Context, rec *model.Recording) FinishResult {
	const op = "doorbell.Finish"
	log := s.log.With(slog.String("op", op), slog.String("raw", rec.RawPath))

	defer s.release(rec.Camera)

	if err := rec.Camera.StopRecording(); err != nil {
		log.Warn("failed to stop recording", sl.Err(err))
	}

	elapsed := rec.Elapsed(s.now())
	if elapsed < s.cfg.Loop.MinClipDuration {
		log.Info("clip too short, discarding", slog.Duration("elapsed", elapsed))
		if err := os.Remove(rec.RawPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("failed to remove raw file", sl.Err(err))
		}
		return FinishResult{Elapsed: elapsed, Outcome: Discarded}
	}

	if err := s.transcoder.Transcode(ctx, rec.RawPath, rec.ContainerPath); err != nil {
		log.Error("failed to transcode clip", slog.String("container", rec.ContainerPath), sl.Err(err))
		return FinishResult{Elapsed: elapsed, Outcome: TranscodeFailed, Err: err}
	}

	event := model.MotionEvent{Filename: rec.ContainerPath, ObservedAt: s.now()}
	if err := s.motionLog.Append(event); err != nil {
		log.Error("failed to append motion log", sl.Err(err))
		return FinishResult{Elapsed: elapsed, Outcome: Saved, Err: err}
	}

	log.Info("clip saved", slog.String("container", rec.ContainerPath), slog.Duration("elapsed", elapsed))
	return FinishResult{Elapsed: elapsed, Outcome: Saved}
}

func (s *Service) ring() error {
	if err := s.dev.Buzzer.Set(true); err != nil {
		return fmt.Errorf("failed to turn buzzer on: %w", err)
	}
	s.sleep(s.cfg.Loop.BuzzerHold)
	if err := s.dev.Buzzer.Set(false); err != nil {
		return fmt.Errorf("failed to turn buzzer off: %w", err)
	}
	return nil
}

func (s *Service) release(cam camera.Device) {
	if err := cam.Close(); err != nil {
		s.log.Warn("failed to release camera", sl.Err(err))
	}
}
