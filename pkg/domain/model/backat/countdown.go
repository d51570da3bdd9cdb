package backat

import (
	"fmt"
	"strings"
	"time"
)

// Part is one numeric field of a countdown, e.g. {3, "h"}
type Part struct {
	Value int64  `json:"value"`
	Unit  string `json:"unit"`
}

// Countdown is the remaining time until a target, reduced to at most two fields
type Countdown struct {
	Parts   []Part `json:"parts"`
	Expired bool   `json:"expired"`
}

// Display joins the parts as "1d 1h". An expired countdown reads "Now".
func (c Countdown) Display() string {
	if c.Expired {
		return "Now"
	}
	s := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		s[i] = fmt.Sprintf("%d%s", p.Value, p.Unit)
	}
	return strings.Join(s, " ")
}

// FormatCountdown returns the countdown from now to target. The two most
// significant units are emitted with a fixed precedence: days+hours,
// hours+minutes, minutes+seconds, or seconds alone.
func FormatCountdown(target, now time.Time) Countdown {
	diff := target.Sub(now)
	if diff <= 0 {
		return Countdown{Parts: []Part{{Value: 0, Unit: "s"}}, Expired: true}
	}

	total := int64(diff / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := (total / 3600) % 24
	days := total / 86400

	var parts []Part
	switch {
	case days > 0:
		parts = []Part{{days, "d"}, {hours, "h"}}
	case hours > 0:
		parts = []Part{{hours, "h"}, {minutes, "m"}}
	case minutes > 0:
		parts = []Part{{minutes, "m"}, {seconds, "s"}}
	default:
		parts = []Part{{seconds, "s"}}
	}

	return Countdown{Parts: parts}
}
