// Package camera records raw video through an external recorder process such
// as libcamera-vid.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"doorbell/internal/errs"
)

// Device is an acquired camera. It records to at most one file at a time.
type Device interface {
	StartRecording(path string) error
	StopRecording() error
	Close() error
}

// Opener acquires a camera for one session.
type Opener interface {
	Open(ctx context.Context) (Device, error)
}

// Exec opens cameras backed by a recorder command. The output path is
// appended to Args as "-o <path>".
type Exec struct {
	Command     string
	Args        []string
	StopTimeout time.Duration
}

// Open returns a fresh device. The recorder process is not started until
// StartRecording.
func (e *Exec) Open(ctx context.Context) (Device, error) {
	if _, err := exec.LookPath(e.Command); err != nil {
		return nil, fmt.Errorf("camera recorder %q unavailable: %w", e.Command, err)
	}
	timeout := e.StopTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &execDevice{command: e.Command, args: e.Args, stopTimeout: timeout}, nil
}

type execDevice struct {
	mu          sync.Mutex
	command     string
	args        []string
	stopTimeout time.Duration

	cmd  *exec.Cmd
	done chan error
}

func (d *execDevice) StartRecording(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return errs.ErrRecordingActive
	}

	args := append(append([]string{}, d.args...), "-o", path)
	cmd := exec.Command(d.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start recorder: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	d.cmd = cmd
	d.done = done
	return nil
}

// StopRecording asks the recorder to finish the file with SIGINT and kills it
// if it has not exited within the stop timeout.
func (d *execDevice) StopRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return errs.ErrNotRecording
	}
	defer func() { d.cmd, d.done = nil, nil }()

	if err := d.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal recorder: %w", err)
	}

	select {
	case err := <-d.done:
		if err != nil && !interrupted(err) {
			return fmt.Errorf("recorder exited: %w", err)
		}
		return nil
	case <-time.After(d.stopTimeout):
		_ = d.cmd.Process.Kill()
		<-d.done
		return fmt.Errorf("recorder did not stop within %s", d.stopTimeout)
	}
}

// Close kills a recorder that is still running. It is safe to call more than
// once.
func (d *execDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return nil
	}
	err := d.cmd.Process.Kill()
	<-d.done
	d.cmd, d.done = nil, nil
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill recorder: %w", err)
	}
	return nil
}

// interrupted reports whether the recorder exited because of our SIGINT.
func interrupted(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal() == syscall.SIGINT
	}
	return false
}
