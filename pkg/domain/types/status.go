package types

import "fmt"

// StatusMode represents the availability status shown on a profile
type StatusMode string

const (
	StatusAvailable StatusMode = "available"
	StatusQoit      StatusMode = "qoit"
	StatusFocused   StatusMode = "focused"
	StatusAway      StatusMode = "away"
)

// AllStatusModes returns all valid status modes
func AllStatusModes() []StatusMode {
	return []StatusMode{
		StatusAvailable,
		StatusQoit,
		StatusFocused,
		StatusAway,
	}
}

// IsValid checks if the status mode is valid
func (s StatusMode) IsValid() bool {
	switch s {
	case StatusAvailable,
		StatusQoit,
		StatusFocused,
		StatusAway:
		return true
	default:
		return false
	}
}

// IsAvailable reports whether the mode is the reachable state
func (s StatusMode) IsAvailable() bool {
	return s == StatusAvailable
}

// Normalize returns the status, treating empty as StatusAvailable
func (s StatusMode) Normalize() StatusMode {
	if s == "" {
		return StatusAvailable
	}
	return s
}

// String returns the string representation of the status mode
func (s StatusMode) String() string {
	return string(s)
}

// Label returns the human readable name of the status mode
func (s StatusMode) Label() string {
	switch s {
	case StatusQoit:
		return "Qoit"
	case StatusFocused:
		return "Focused"
	case StatusAway:
		return "Away"
	default:
		return "Available"
	}
}

// ParseStatusMode parses a string into a StatusMode
func ParseStatusMode(s string) (StatusMode, error) {
	status := StatusMode(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status mode: %s", s)
	}
	return status, nil
}

// ResponseDefaults holds the response-time expectations applied when a status is selected
type ResponseDefaults struct {
	EmailResponseTime string `json:"email_response_time" toml:"email"`
	DMResponseTime    string `json:"dm_response_time" toml:"dm"`
	UrgentMethod      string `json:"urgent_method" toml:"urgent"`
}

var defaultResponses = map[StatusMode]ResponseDefaults{
	StatusAvailable: {EmailResponseTime: "~1h", DMResponseTime: "~30min", UrgentMethod: "Call"},
	StatusQoit:      {EmailResponseTime: "~24-48h", DMResponseTime: "~12h", UrgentMethod: "Call"},
	StatusFocused:   {EmailResponseTime: "~4h", DMResponseTime: "~2h", UrgentMethod: "Text"},
	StatusAway:      {EmailResponseTime: "When back", DMResponseTime: "When back", UrgentMethod: "Emergency only"},
}

// Defaults returns the built-in response-time defaults for the status mode
func (s StatusMode) Defaults() ResponseDefaults {
	if d, ok := defaultResponses[s]; ok {
		return d
	}
	return defaultResponses[StatusAvailable]
}

// InitialResponseDefaults are shown for a profile that has never stored response times
var InitialResponseDefaults = ResponseDefaults{
	EmailResponseTime: "~24h",
	DMResponseTime:    "~4h",
	UrgentMethod:      "Call",
}
