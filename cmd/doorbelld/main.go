package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"doorbell/config"
	"doorbell/internal/camera"
	"doorbell/internal/doorbell"
	"doorbell/internal/grovepi"
	"doorbell/internal/lib/logger"
	"doorbell/internal/lib/sl"
	"doorbell/internal/motionlog"
	"doorbell/internal/transcode"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("path", configPath), sl.Err(err))
		os.Exit(1)
	}

	log := logger.Setup(cfg.Env).With(slog.String("component", "doorbelld"))
	log.Info("configuration loaded", slog.String("path", configPath), slog.String("env", cfg.Env))

	board, err := grovepi.Open(cfg.Sensors.I2CBus, cfg.Sensors.I2CAddress)
	if err != nil {
		log.Error("failed to open sensor board", sl.Err(err))
		os.Exit(1)
	}

	if err := board.PinMode(cfg.Sensors.MotionPin, grovepi.Input); err != nil {
		log.Error("failed to configure motion pin", sl.Err(err))
		os.Exit(1)
	}
	if err := board.PinMode(cfg.Sensors.BuzzerPin, grovepi.Output); err != nil {
		log.Error("failed to configure buzzer pin", sl.Err(err))
		os.Exit(1)
	}

	devices := doorbell.Devices{
		Motion:   grovepi.DigitalInput{Board: board, Pin: cfg.Sensors.MotionPin},
		Joystick: grovepi.AnalogInput{Board: board, Pin: cfg.Sensors.JoystickPin},
		Buzzer:   grovepi.DigitalOutput{Board: board, Pin: cfg.Sensors.BuzzerPin},
		Cameras: &camera.Exec{
			Command:     cfg.Camera.Command,
			Args:        cfg.Camera.Args,
			StopTimeout: cfg.Camera.StopTimeout,
		},
	}

	svc := doorbell.NewService(
		cfg,
		log,
		devices,
		transcode.NewMP4Box(cfg.Transcode.Binary),
		motionlog.NewFile(cfg.Paths.MotionLog),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()
	}()

	runErr := svc.Run(ctx)
	if err := board.Close(); err != nil {
		log.Warn("failed to close sensor board", sl.Err(err))
	}
	if runErr != nil {
		log.Error("sensor loop failed", sl.Err(runErr))
		os.Exit(1)
	}

	log.Info("sensor loop stopped")
}
