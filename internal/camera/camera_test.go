package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorbell/internal/errs"
)

// fakeRecorder is a shell script standing in for libcamera-vid. It receives
// "-o <path>" as $1 and $2.
func fakeRecorder(onInterrupt string) *Exec {
	script := `echo frames > "$2"; trap '` + onInterrupt + `' INT; while :; do sleep 0.05; done`
	return &Exec{
		Command:     "sh",
		Args:        []string{"-c", script, "recorder"},
		StopTimeout: 2 * time.Second,
	}
}

func TestExec_StartAndStopRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_20240101-000000.h264")

	dev, err := fakeRecorder("exit 0").Open(context.Background())
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.StartRecording(path))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, dev.StopRecording())
	assert.NoError(t, dev.Close())
}

func TestExec_SecondStartIsRejected(t *testing.T) {
	dir := t.TempDir()
	dev, err := fakeRecorder("exit 0").Open(context.Background())
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.StartRecording(filepath.Join(dir, "a.h264")))
	err = dev.StartRecording(filepath.Join(dir, "b.h264"))
	assert.ErrorIs(t, err, errs.ErrRecordingActive)
}

func TestExec_StopWithoutStart(t *testing.T) {
	dev, err := fakeRecorder("exit 0").Open(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, dev.StopRecording(), errs.ErrNotRecording)
}

func TestExec_StopTimesOutOnStubbornRecorder(t *testing.T) {
	rec := fakeRecorder("")
	rec.StopTimeout = 200 * time.Millisecond

	dev, err := rec.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, dev.StartRecording(filepath.Join(t.TempDir(), "x.h264")))
	assert.Error(t, dev.StopRecording())
	// StopRecording already killed and reaped it.
	assert.NoError(t, dev.Close())
}

func TestExec_CloseKillsRunningRecorder(t *testing.T) {
	dev, err := fakeRecorder("").Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, dev.StartRecording(filepath.Join(t.TempDir(), "x.h264")))
	assert.NoError(t, dev.Close())
	assert.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.StopRecording(), errs.ErrNotRecording)
}

func TestExec_OpenFailsForMissingCommand(t *testing.T) {
	rec := &Exec{Command: "definitely-not-a-recorder-binary"}

	_, err := rec.Open(context.Background())
	assert.Error(t, err)
}
