// Package backat implements the return-time picker: the logarithmic slider
// encoding, countdown formatting and the drag/tap/preset state machine.
package backat

import (
	"fmt"
	"math"
)

const (
	// MaxSeconds is the longest selectable duration (7 days)
	MaxSeconds int64 = 7 * 24 * 60 * 60
	// SecondsThreshold is the duration below which values snap to the second instead of the minute
	SecondsThreshold int64 = 120
	// MinLogSeconds is the lower bound of the logarithmic curve
	MinLogSeconds int64 = 1
)

var (
	logMin = math.Log(float64(MinLogSeconds))
	logMax = math.Log(float64(MaxSeconds))
)

// PositionToSeconds maps a slider position in [0,1] to a duration in seconds.
// Position 0 is exactly zero seconds; everything above follows a log curve
// between MinLogSeconds and MaxSeconds.
func PositionToSeconds(position float64) int64 {
	p := clampPosition(position)
	if p == 0 {
		return 0
	}

	s := math.Exp(logMin + p*(logMax-logMin))
	if s < float64(SecondsThreshold) {
		return int64(math.Round(s))
	}
	rounded := int64(math.Round(s/60)) * 60
	if rounded > MaxSeconds {
		return MaxSeconds
	}
	return rounded
}

// SecondsToPosition is the inverse of PositionToSeconds
func SecondsToPosition(seconds int64) float64 {
	return positionOf(float64(seconds))
}

func positionOf(seconds float64) float64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	if seconds > float64(MaxSeconds) {
		seconds = float64(MaxSeconds)
	}
	if seconds < float64(MinLogSeconds) {
		seconds = float64(MinLogSeconds)
	}
	return clampPosition((math.Log(seconds) - logMin) / (logMax - logMin))
}

func clampPosition(p float64) float64 {
	switch {
	case math.IsNaN(p) || p <= 0:
		return 0
	case p >= 1:
		return 1
	default:
		return p
	}
}

// DurationLabel is a duration split into a printable value and unit, e.g. "2.5" "hours"
type DurationLabel struct {
	Value string
	Unit  string
}

func (l DurationLabel) String() string {
	return l.Value + " " + l.Unit
}

// FormatDuration renders a duration in minutes the way the slider preview shows it
func FormatDuration(minutes float64) DurationLabel {
	switch {
	case minutes <= 0:
		return DurationLabel{Value: "0", Unit: "now"}
	case minutes < 60:
		return DurationLabel{Value: fmt.Sprintf("%d", int64(math.Round(minutes))), Unit: "min"}
	case minutes < 60*24:
		hours := math.Round(minutes/60*10) / 10
		return DurationLabel{Value: formatTenths(hours), Unit: plural(hours, "hour")}
	default:
		days := math.Round(minutes/(60*24)*10) / 10
		return DurationLabel{Value: formatTenths(days), Unit: plural(days, "day")}
	}
}

func formatTenths(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func plural(v float64, unit string) string {
	if v == 1 {
		return unit
	}
	return unit + "s"
}

// Marker is a labelled tick on the slider track
type Marker struct {
	Minutes int64
	Label   string
}

// Position returns where the marker sits on the track
func (m Marker) Position() float64 {
	return SecondsToPosition(m.Minutes * 60)
}

// Markers are the fixed ticks shown under the slider
var Markers = []Marker{
	{Minutes: 0, Label: "Now"},
	{Minutes: 1, Label: "1m"},
	{Minutes: 5, Label: "5m"},
	{Minutes: 15, Label: "15m"},
	{Minutes: 60, Label: "1h"},
	{Minutes: 240, Label: "4h"},
	{Minutes: 60 * 24, Label: "1d"},
	{Minutes: 60 * 24 * 7, Label: "1w"},
}
