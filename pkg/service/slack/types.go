package slack

import (
	"fmt"
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// MaxStatusTextLength is the Slack limit on custom status text, in characters
const MaxStatusTextLength = 100

const (
	presenceAway = "away"
	presenceAuto = "auto"
)

// customStatus is the Slack custom status derived from a status mode
type customStatus struct {
	Emoji string
	Text  string
}

var statusTable = map[types.StatusMode]customStatus{
	types.StatusAvailable: {},
	types.StatusQoit:      {Emoji: ":crescent_moon:", Text: "Qoit mode - going quiet"},
	types.StatusFocused:   {Emoji: ":zap:", Text: "Deep work - limited availability"},
	types.StatusAway:      {Emoji: ":airplane:", Text: "Away"},
}

// Profile is the custom status and presence pushed to Slack for one sync
type Profile struct {
	Emoji      string
	Text       string
	Expiration int64 // unix seconds, 0 means no expiration
	Presence   string
}

// BuildProfile maps a sync request to the Slack custom status and presence.
// A status message replaces the mode text, and a future return time is appended
// to the text. Non-available statuses expire at the return time.
func BuildProfile(req *model.SyncRequest, now time.Time) Profile {
	status := req.Status.Normalize()
	cs := statusTable[status]

	text := cs.Text
	if msg := req.Message(); msg != "" {
		text = msg
	}

	p := Profile{
		Emoji:    cs.Emoji,
		Presence: presenceAuto,
	}

	if !status.IsAvailable() {
		p.Presence = presenceAway
		if req.BackAt != nil {
			if req.BackAt.After(now) {
				text += fmt.Sprintf(" • Back %s", req.BackAt.Format("Jan 2"))
			}
			p.Expiration = req.BackAt.Unix()
		}
	}

	p.Text = truncate(text, MaxStatusTextLength)
	return p
}

// truncate cuts s to at most n runes without splitting a character
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
