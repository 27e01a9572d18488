package store

import "time"

// Clip is one entry of the video directory as the lister sees it.
type Clip struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool

	// RecordedAt is parsed from the name; nil for files not named by the
	// sensor loop.
	RecordedAt *time.Time
}
