package backat

import "time"

// gestureState is either idleState or *draggingState
type gestureState interface {
	gesture()
}

type idleState struct{}

func (idleState) gesture() {}

// pointerSession is created on pointer-down and finalized on pointer-up
type pointerSession struct {
	startX        float64
	startedAt     time.Time
	startPosition float64
}

// moved reports whether x is far enough from the start to count as a drag
func (s *pointerSession) moved(x, threshold float64) bool {
	d := x - s.startX
	if d < 0 {
		d = -d
	}
	return d >= threshold
}

// draggingState holds the in-flight gesture. preview is meaningful only once moved is set.
type draggingState struct {
	session *pointerSession
	moved   bool
	preview float64
}

func (*draggingState) gesture() {}

// position returns the slider position shown during the gesture
func (d *draggingState) position() float64 {
	if d.moved {
		return d.preview
	}
	return d.session.startPosition
}
