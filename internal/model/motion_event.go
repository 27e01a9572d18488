package model

import (
	"fmt"
	"time"
)

// MotionLogTimeLayout is the human timestamp written to the motion log.
const MotionLogTimeLayout = "2006-01-02 15:04:05"

// MotionEvent is one line of the motion log.
type MotionEvent struct {
	Filename   string
	ObservedAt time.Time
}

// String renders the event as "<filename>, <timestamp>".
func (e MotionEvent) String() string {
	return fmt.Sprintf("%s, %s", e.Filename, e.ObservedAt.Format(MotionLogTimeLayout))
}
