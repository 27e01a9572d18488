package internal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorbell/config"
	"doorbell/internal/api"
	"doorbell/internal/camera"
	"doorbell/internal/doorbell"
	"doorbell/internal/motionlog"
	"doorbell/internal/store"
)

var clipBytes = []byte("\x00\x00\x00\x01raw-h264-frames")

type oneShotMotion struct{ fired atomic.Bool }

func (m *oneShotMotion) Read() (bool, error) { return !m.fired.Swap(true), nil }

type restingJoystick struct{}

func (restingJoystick) Read() (int, error) { return 0, nil }

type silentBuzzer struct{}

func (silentBuzzer) Set(bool) error { return nil }

type fileCamera struct {
	mu     sync.Mutex
	closed bool
}

func (c *fileCamera) StartRecording(path string) error {
	return os.WriteFile(path, clipBytes, 0o644)
}

func (c *fileCamera) StopRecording() error { return nil }

func (c *fileCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type cameraOpener struct{ cams []*fileCamera }

func (o *cameraOpener) Open(context.Context) (camera.Device, error) {
	c := &fileCamera{}
	o.cams = append(o.cams, c)
	return c, nil
}

// copyMuxer stands in for MP4Box by copying the raw stream verbatim.
type copyMuxer struct{}

func (copyMuxer) Transcode(_ context.Context, rawPath, containerPath string) error {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	return os.WriteFile(containerPath, data, 0o644)
}

// TestMotionToListing drives the sensor loop through one motion-triggered
// session and checks the resulting clip through the video lister.
func TestMotionToListing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(dir, "videos_h264")
	cfg.Paths.VideoDir = filepath.Join(dir, "static")
	cfg.Paths.MotionLog = filepath.Join(dir, "motion.txt")
	cfg.Loop.PollInterval = 5 * time.Millisecond
	cfg.Loop.RecordDuration = 50 * time.Millisecond
	cfg.Loop.MinClipDuration = 20 * time.Millisecond
	cfg.Server.RateLimitPerSec = 0
	cfg.Server.CacheTTL = time.Minute

	opener := &cameraOpener{}
	svc := doorbell.NewService(
		cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		doorbell.Devices{
			Motion:   &oneShotMotion{},
			Joystick: restingJoystick{},
			Buzzer:   silentBuzzer{},
			Cameras:  opener,
		},
		copyMuxer{},
		motionlog.NewFile(cfg.Paths.MotionLog),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(cfg.Paths.MotionLog)
		return err == nil && len(data) > 0
	}, 5*time.Second, 10*time.Millisecond, "motion log never written")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sensor loop did not stop")
	}

	require.Len(t, opener.cams, 1, "a single trigger must produce a single session")
	assert.True(t, opener.cams[0].closed)

	entries, err := os.ReadDir(cfg.Paths.VideoDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "video_"))
	assert.True(t, strings.HasSuffix(name, ".mp4"))

	logLine, err := os.ReadFile(cfg.Paths.MotionLog)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(logLine), filepath.Join(cfg.Paths.VideoDir, name)+", "))

	router := api.NewRouter(&cfg.Server, store.NewDirStore(cfg.Paths.VideoDir, slog.New(slog.NewTextHandler(io.Discard, nil))))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/"+name, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.Equal(clipBytes, w.Body.Bytes()))
}
