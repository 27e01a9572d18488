// Package transcode wraps raw camera output into a web-playable container.
package transcode

import (
	"context"
	"fmt"
	"os/exec"

	"doorbell/internal/errs"
)

// Transcoder produces containerPath from rawPath.
type Transcoder interface {
	Transcode(ctx context.Context, rawPath, containerPath string) error
}

// MP4Box runs "<Binary> -add <raw> <container>".
type MP4Box struct {
	Binary string
}

// NewMP4Box returns a transcoder using binary, or "MP4Box" when empty.
func NewMP4Box(binary string) *MP4Box {
	if binary == "" {
		binary = "MP4Box"
	}
	return &MP4Box{Binary: binary}
}

func (m *MP4Box) Transcode(ctx context.Context, rawPath, containerPath string) error {
	cmd := exec.CommandContext(ctx, m.Binary, "-add", rawPath, containerPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s -add %s %s: %v (output: %s)", errs.ErrTranscode, m.Binary, rawPath, containerPath, err, string(output))
	}
	return nil
}
