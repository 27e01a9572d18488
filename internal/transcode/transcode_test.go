package transcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorbell/internal/errs"
)

// writeFakeMuxer installs a script that copies its second argument to its
// third, the way "MP4Box -add raw out" produces out from raw.
func writeFakeMuxer(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MP4Box")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestMP4Box_Transcode(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "video_20240101-000000.h264")
	out := filepath.Join(dir, "video_20240101-000000.mp4")
	require.NoError(t, os.WriteFile(raw, []byte("raw-bytes"), 0o644))

	muxer := NewMP4Box(writeFakeMuxer(t, `[ "$1" = "-add" ] || exit 2; cp "$2" "$3"`))

	require.NoError(t, muxer.Transcode(context.Background(), raw, out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(got))
}

func TestMP4Box_FailureIsSurfaced(t *testing.T) {
	muxer := NewMP4Box(writeFakeMuxer(t, `echo "bad stream" >&2; exit 1`))

	err := muxer.Transcode(context.Background(), "in.h264", "out.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTranscode)
	assert.Contains(t, err.Error(), "bad stream")
}

func TestMP4Box_MissingBinary(t *testing.T) {
	muxer := NewMP4Box("/nonexistent/MP4Box")

	err := muxer.Transcode(context.Background(), "in.h264", "out.mp4")
	assert.ErrorIs(t, err, errs.ErrTranscode)
}

func TestNewMP4Box_DefaultBinary(t *testing.T) {
	assert.Equal(t, "MP4Box", NewMP4Box("").Binary)
}
