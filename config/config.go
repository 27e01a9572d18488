package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Env       string          `yaml:"env" env:"DOORBELL_ENV"`
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Loop      LoopConfig      `yaml:"loop"`
	Camera    CameraConfig    `yaml:"camera"`
	Transcode TranscodeConfig `yaml:"transcode"`
}

// ServerConfig holds the video lister's HTTP settings.
type ServerConfig struct {
	Host            string  `yaml:"host" env:"SERVER_HOST"`
	Port            int     `yaml:"port" env:"PORT"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`

	CacheTTL time.Duration `yaml:"-"`
}

// PathsConfig holds the filesystem layout shared by both processes.
type PathsConfig struct {
	RawDir    string `yaml:"raw_dir" env:"RAW_DIR"`
	VideoDir  string `yaml:"video_dir" env:"VIDEO_DIR"`
	MotionLog string `yaml:"motion_log" env:"MOTION_LOG"`
}

// SensorsConfig describes how the sensor board is wired.
type SensorsConfig struct {
	I2CBus            string `yaml:"i2c_bus" env:"I2C_BUS"`
	I2CAddress        uint16 `yaml:"i2c_address"`
	MotionPin         byte   `yaml:"motion_pin"`
	JoystickPin       byte   `yaml:"joystick_pin"`
	BuzzerPin         byte   `yaml:"buzzer_pin"`
	JoystickThreshold int    `yaml:"joystick_threshold"`
}

// LoopConfig holds the sensor loop timings.
type LoopConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	RecordSeconds  int `yaml:"record_seconds"`
	MinClipSeconds int `yaml:"min_clip_seconds"`
	BuzzerHoldMs   int `yaml:"buzzer_hold_ms"`

	PollInterval    time.Duration `yaml:"-"`
	RecordDuration  time.Duration `yaml:"-"`
	MinClipDuration time.Duration `yaml:"-"`
	BuzzerHold      time.Duration `yaml:"-"`
}

// CameraConfig describes the external recorder process.
type CameraConfig struct {
	Command            string   `yaml:"command" env:"CAMERA_COMMAND"`
	Args               []string `yaml:"args"`
	StopTimeoutSeconds int      `yaml:"stop_timeout_seconds"`

	StopTimeout time.Duration `yaml:"-"`
}

// TranscodeConfig describes the muxing tool.
type TranscodeConfig struct {
	Binary string `yaml:"binary" env:"MP4BOX_BINARY"`
}

// Default returns the configuration matching the stock hardware setup.
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Port:            5000,
			RateLimitPerSec: 10,
			RateLimitBurst:  20,
			CacheTTLSeconds: 300,
		},
		Paths: PathsConfig{
			RawDir:    "videos_h264",
			VideoDir:  "static",
			MotionLog: "motion.txt",
		},
		Sensors: SensorsConfig{
			I2CAddress:        0x04,
			MotionPin:         4,
			JoystickPin:       0,
			BuzzerPin:         3,
			JoystickThreshold: 1000,
		},
		Loop: LoopConfig{
			PollIntervalMs: 100,
			RecordSeconds:  10,
			MinClipSeconds: 10,
			BuzzerHoldMs:   500,
		},
		Camera: CameraConfig{
			Command: "libcamera-vid",
			Args: []string{
				"-t", "0",
				"--width", "320", "--height", "240",
				"-p", "10,10,320,240",
				"--codec", "h264",
			},
			StopTimeoutSeconds: 5,
		},
		Transcode: TranscodeConfig{
			Binary: "MP4Box",
		},
	}
}

// Load reads the configuration from the given path, then applies environment
// overrides. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.derive()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) derive() {
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 300
	}
	c.Server.CacheTTL = time.Duration(c.Server.CacheTTLSeconds) * time.Second

	c.Loop.PollInterval = time.Duration(c.Loop.PollIntervalMs) * time.Millisecond
	c.Loop.RecordDuration = time.Duration(c.Loop.RecordSeconds) * time.Second
	c.Loop.MinClipDuration = time.Duration(c.Loop.MinClipSeconds) * time.Second
	c.Loop.BuzzerHold = time.Duration(c.Loop.BuzzerHoldMs) * time.Millisecond

	if c.Camera.StopTimeoutSeconds <= 0 {
		c.Camera.StopTimeoutSeconds = 5
	}
	c.Camera.StopTimeout = time.Duration(c.Camera.StopTimeoutSeconds) * time.Second
}

// Validate checks the values a misconfigured file would silently break.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Paths.RawDir == "" || c.Paths.VideoDir == "" || c.Paths.MotionLog == "" {
		return errors.New("paths.raw_dir, paths.video_dir and paths.motion_log are required")
	}
	if c.Loop.PollIntervalMs <= 0 {
		return fmt.Errorf("invalid loop.poll_interval_ms: %d", c.Loop.PollIntervalMs)
	}
	if c.Loop.RecordSeconds <= 0 {
		return fmt.Errorf("invalid loop.record_seconds: %d", c.Loop.RecordSeconds)
	}
	if c.Loop.MinClipSeconds < 0 {
		return fmt.Errorf("invalid loop.min_clip_seconds: %d", c.Loop.MinClipSeconds)
	}
	if c.Loop.BuzzerHoldMs < 0 {
		return fmt.Errorf("invalid loop.buzzer_hold_ms: %d", c.Loop.BuzzerHoldMs)
	}
	if c.Camera.Command == "" {
		return errors.New("camera.command is required")
	}
	if c.Transcode.Binary == "" {
		return errors.New("transcode.binary is required")
	}
	return nil
}

// ServerAddress returns the lister's listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
