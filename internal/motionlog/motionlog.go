// Package motionlog appends completed clips to a flat text file, one
// "<filename>, <timestamp>" line per clip.
package motionlog

import (
	"fmt"
	"os"
	"sync"

	"doorbell/internal/model"
)

// Appender records motion events.
type Appender interface {
	Append(e model.MotionEvent) error
}

// File appends to a log file on disk. The file is opened per write so it can
// be rotated or removed between clips.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Append(e model.MotionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open motion log: %w", err)
	}
	if _, err := fmt.Fprintln(fh, e.String()); err != nil {
		fh.Close()
		return fmt.Errorf("failed to append to motion log: %w", err)
	}
	return fh.Close()
}
