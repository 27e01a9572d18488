package parse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// ClipTimeLayout is the timestamp embedded in clip names.
const ClipTimeLayout = "20060102-150405"

const (
	RawExt       = "h264"
	ContainerExt = "mp4"
)

var clipRe = regexp.MustCompile(`^video_(\d{8}-\d{6})\.([A-Za-z0-9]+)$`)

// ClipName returns "video_<YYYYMMDD-HHMMSS>.<ext>" for t.
func ClipName(t time.Time, ext string) string {
	return fmt.Sprintf("video_%s.%s", t.Format(ClipTimeLayout), ext)
}

// ClipPaths holds the raw and container paths for one session.
type ClipPaths struct {
	Raw       string
	Container string
}

// NewClipPaths derives both paths of a session from the same timestamp.
func NewClipPaths(rawDir, videoDir string, t time.Time) ClipPaths {
	return ClipPaths{
		Raw:       filepath.Join(rawDir, ClipName(t, RawExt)),
		Container: filepath.Join(videoDir, ClipName(t, ContainerExt)),
	}
}

// ParsedClip holds the structured data parsed from a clip file name.
type ParsedClip struct {
	RecordedAt time.Time
	Ext        string
}

// ParseClipName extracts the recording time from a clip file name. The
// timestamp is interpreted in loc, since clips are named with local time.
func ParseClipName(name string, loc *time.Location) (ParsedClip, error) {
	m := clipRe.FindStringSubmatch(name)
	if m == nil {
		return ParsedClip{}, fmt.Errorf("not a clip name: %q", name)
	}
	t, err := time.ParseInLocation(ClipTimeLayout, m[1], loc)
	if err != nil {
		return ParsedClip{}, fmt.Errorf("bad clip timestamp in %q: %w", name, err)
	}
	return ParsedClip{RecordedAt: t, Ext: m[2]}, nil
}
