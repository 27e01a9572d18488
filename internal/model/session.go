package model

import (
	"time"

	"doorbell/internal/camera"
)

// State is the sensor loop's session state. It is either Idle or *Recording,
// so at most one camera handle can be held at a time.
type State interface {
	isState()
}

// Idle means no camera is held.
type Idle struct{}

// Recording is an active session. The loop owns Camera until the session is
// finished or the loop exits.
type Recording struct {
	Camera        camera.Device
	StartedAt     time.Time
	RawPath       string
	ContainerPath string
}

func (Idle) isState()       {}
func (*Recording) isState() {}

// Elapsed returns how long the session has been recording at now.
func (r *Recording) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.StartedAt)
}
