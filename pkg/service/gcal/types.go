package gcal

import (
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"google.golang.org/api/calendar/v3"
)

const (
	// DefaultEventDuration is used when a status has no return time
	DefaultEventDuration = 2 * time.Hour

	// eventMarker identifies events created by this service in their description
	eventMarker = "synced from Qoit"

	// searchQuery narrows the event listing before the description check
	searchQuery = "Qoit"

	cleanupLookBehind = 24 * time.Hour
	cleanupLookAhead  = 30 * 24 * time.Hour

	primaryCalendar = "primary"
)

type eventStyle struct {
	Title   string
	ColorID string
}

var eventStyles = map[types.StatusMode]eventStyle{
	types.StatusAvailable: {Title: "", ColorID: "2"},
	types.StatusQoit:      {Title: "🌙 Qoit Mode", ColorID: "8"},
	types.StatusFocused:   {Title: "⚡ Deep Work", ColorID: "5"},
	types.StatusAway:      {Title: "✈️ Away", ColorID: "11"},
}

// BuildEvent returns the busy block covering now until the return time, or
// DefaultEventDuration when no return time is set
func BuildEvent(req *model.SyncRequest, now time.Time) *calendar.Event {
	status := req.Status.Normalize()
	style := eventStyles[status]
	msg := req.Message()

	summary := style.Title
	detail := status.String()
	if msg != "" {
		summary = style.Title + ": " + msg
		detail = msg
	}

	end := now.Add(DefaultEventDuration)
	if req.BackAt != nil {
		end = *req.BackAt
	}

	return &calendar.Event{
		Summary:      summary,
		Description:  "Status " + eventMarker + " - " + detail,
		Start:        &calendar.EventDateTime{DateTime: now.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:          &calendar.EventDateTime{DateTime: end.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		ColorId:      style.ColorID,
		Transparency: "opaque",
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       []*calendar.EventReminder{},
			ForceSendFields: []string{"UseDefault", "Overrides"},
		},
	}
}

// eventEnd parses the end of an event, accepting both timed and all-day events
func eventEnd(ev *calendar.Event) (time.Time, bool) {
	if ev.End == nil {
		return time.Time{}, false
	}
	if ev.End.DateTime != "" {
		t, err := time.Parse(time.RFC3339, ev.End.DateTime)
		return t, err == nil
	}
	if ev.End.Date != "" {
		t, err := time.Parse(time.DateOnly, ev.End.Date)
		return t, err == nil
	}
	return time.Time{}, false
}
