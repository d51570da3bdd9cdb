package backat

import (
	"sync"
	"time"

	"github.com/secmon-lab/qoit/pkg/utils/clock"
)

const (
	DefaultMoveThreshold  = 8.0
	DefaultTapDelay       = 100 * time.Millisecond
	DefaultResyncInterval = time.Second
	DefaultDuration       = 2 * time.Hour
)

// ChangeFunc receives every committed return time. nil means the selection was cleared.
type ChangeFunc func(backAt *time.Time)

// Picker owns a target return time and the slider position derived from it.
// Pointer handlers never block; committed values are reported through the
// ChangeFunc exactly once per commit and never during a drag preview.
type Picker struct {
	clock          clock.Clock
	onChange       ChangeFunc
	moveThreshold  float64
	tapDelay       time.Duration
	resyncInterval time.Duration

	// held across the closed check and the ChangeFunc so Close waits for it
	notifyMu sync.Mutex

	mu          sync.Mutex
	target      time.Time
	position    float64
	gesture     gestureState
	lastDragEnd time.Time
	resync      clock.Timer
	tapTimer    clock.Timer
	closed      bool
}

type PickerOption func(*Picker)

func WithClock(c clock.Clock) PickerOption {
	return func(p *Picker) {
		p.clock = c
	}
}

// WithMoveThreshold sets the pointer displacement in pixels that turns a hold into a drag
func WithMoveThreshold(px float64) PickerOption {
	return func(p *Picker) {
		p.moveThreshold = px
	}
}

func WithTapDelay(d time.Duration) PickerOption {
	return func(p *Picker) {
		p.tapDelay = d
	}
}

func WithResyncInterval(d time.Duration) PickerOption {
	return func(p *Picker) {
		p.resyncInterval = d
	}
}

// NewPicker creates a picker starting at value, or DefaultDuration from now if value is nil.
// The picker runs a resync timer until Close is called.
func NewPicker(value *time.Time, onChange ChangeFunc, opts ...PickerOption) *Picker {
	p := &Picker{
		clock:          clock.New(),
		onChange:       onChange,
		moveThreshold:  DefaultMoveThreshold,
		tapDelay:       DefaultTapDelay,
		resyncInterval: DefaultResyncInterval,
		gesture:        idleState{},
	}
	for _, opt := range opts {
		opt(p)
	}

	now := p.clock.Now()
	if value != nil {
		p.target = *value
	} else {
		p.target = now.Add(DefaultDuration)
	}
	p.position = p.remainingPosition(now)
	p.resync = clock.Every(p.clock, p.resyncInterval, p.resyncPosition)

	return p
}

func (p *Picker) remainingPosition(now time.Time) float64 {
	return positionOf(p.target.Sub(now).Seconds())
}

func (p *Picker) resyncPosition() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, idle := p.gesture.(idleState); !idle {
		return
	}
	p.position = p.remainingPosition(p.clock.Now())
}

// PointerDown starts a gesture at x, the pointer offset within the track
func (p *Picker) PointerDown(x float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, idle := p.gesture.(idleState); !idle {
		return
	}

	p.gesture = &draggingState{
		session: &pointerSession{
			startX:        x,
			startedAt:     p.clock.Now(),
			startPosition: p.position,
		},
	}
}

// PointerMove updates the preview once the pointer has travelled past the move threshold
func (p *Picker) PointerMove(x, width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	d, ok := p.gesture.(*draggingState)
	if !ok {
		return
	}
	if !d.moved && !d.session.moved(x, p.moveThreshold) {
		return
	}
	d.moved = true
	d.preview = trackPosition(x, width)
}

// PointerUp finishes the gesture and commits. A drag commits now plus the
// dragged duration; a hold without drag pushes the existing target back by the
// time the pointer was held.
func (p *Picker) PointerUp() {
	committed, ok := p.finishGesture()
	if ok {
		p.notify(&committed)
	}
}

func (p *Picker) finishGesture() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return time.Time{}, false
	}
	d, ok := p.gesture.(*draggingState)
	if !ok {
		return time.Time{}, false
	}

	now := p.clock.Now()
	p.gesture = idleState{}
	p.lastDragEnd = now

	if d.moved {
		p.position = d.preview
		p.target = now.Add(time.Duration(PositionToSeconds(d.preview)) * time.Second)
	} else {
		p.target = p.target.Add(now.Sub(d.session.startedAt))
	}
	return p.target, true
}

// TapTrack moves the slider to x and commits after the tap delay. Taps
// arriving within the tap delay of a finished drag are ignored.
func (p *Picker) TapTrack(x, width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, idle := p.gesture.(idleState); !idle {
		return
	}
	now := p.clock.Now()
	if !p.lastDragEnd.IsZero() && now.Sub(p.lastDragEnd) < p.tapDelay {
		return
	}

	pos := trackPosition(x, width)
	p.position = pos
	p.stopTapLocked()

	var timer clock.Timer
	timer = p.clock.AfterFunc(p.tapDelay, func() {
		p.mu.Lock()
		if p.closed || p.tapTimer != timer {
			p.mu.Unlock()
			return
		}
		p.tapTimer = nil
		p.target = p.clock.Now().Add(time.Duration(PositionToSeconds(pos)) * time.Second)
		committed := p.target
		p.mu.Unlock()

		p.notify(&committed)
	})
	p.tapTimer = timer
}

// SelectPreset commits now plus minutes immediately
func (p *Picker) SelectPreset(minutes int64) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if minutes < 0 {
		minutes = 0
	}
	p.stopTapLocked()
	p.gesture = idleState{}
	p.position = SecondsToPosition(minutes * 60)
	p.target = p.clock.Now().Add(time.Duration(minutes) * time.Minute)
	committed := p.target
	p.mu.Unlock()

	p.notify(&committed)
}

// Clear resets the internal target to the default duration and reports nil
func (p *Picker) Clear() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.stopTapLocked()
	p.gesture = idleState{}
	p.target = p.clock.Now().Add(DefaultDuration)
	p.position = SecondsToPosition(int64(DefaultDuration / time.Second))
	p.mu.Unlock()

	p.notify(nil)
}

// Close stops every timer owned by the picker. A callback already running
// finishes before Close returns; none fires afterwards.
func (p *Picker) Close() {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopTapLocked()
	if p.resync != nil {
		p.resync.Stop()
	}
}

func (p *Picker) stopTapLocked() {
	if p.tapTimer != nil {
		p.tapTimer.Stop()
		p.tapTimer = nil
	}
}

func (p *Picker) notify(v *time.Time) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed || p.onChange == nil {
		return
	}
	p.onChange(v)
}

// Target returns the committed return time
func (p *Picker) Target() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Position returns the slider position currently shown
func (p *Picker) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.gesture.(*draggingState); ok {
		return d.position()
	}
	return p.position
}

// View is a snapshot of everything the picker displays
type View struct {
	Position    float64       `json:"position"`
	Dragging    bool          `json:"dragging"`
	Preview     bool          `json:"preview"`
	DisplayTime time.Time     `json:"display_time"`
	Countdown   Countdown     `json:"countdown"`
	Duration    DurationLabel `json:"duration"`
	Style       Style         `json:"style"`
}

// View returns the current display state. While a moved drag is in progress
// the countdown previews the dragged duration; during a hold it stays frozen
// at the moment the pointer went down.
func (p *Picker) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	v := View{Position: p.position, DisplayTime: p.target}

	switch g := p.gesture.(type) {
	case *draggingState:
		v.Dragging = true
		v.Position = g.position()
		if g.moved {
			v.Preview = true
			v.DisplayTime = now.Add(time.Duration(PositionToSeconds(g.preview)) * time.Second)
			v.Countdown = FormatCountdown(v.DisplayTime, now)
		} else {
			v.Countdown = FormatCountdown(p.target, g.session.startedAt)
		}
	default:
		v.Countdown = FormatCountdown(p.target, now)
	}

	minutes := float64(PositionToSeconds(v.Position)) / 60
	v.Duration = FormatDuration(minutes)
	v.Style = StyleFor(minutes)
	return v
}

func trackPosition(x, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return clampPosition(x / width)
}
