package errs

import "errors"

var (
	ErrRecordingActive = errors.New("recording already in progress")
	ErrNotRecording    = errors.New("no recording in progress")
	ErrTranscode       = errors.New("transcode failed")
	ErrClipNotFound    = errors.New("clip not found")
)
