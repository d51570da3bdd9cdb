package types

import "fmt"

// IntegrationType identifies a third-party service mirroring the status
type IntegrationType string

const (
	IntegrationSlack          IntegrationType = "slack"
	IntegrationGoogleCalendar IntegrationType = "google_calendar"
	IntegrationDiscord        IntegrationType = "discord"
)

// AllIntegrationTypes returns all supported integration types
func AllIntegrationTypes() []IntegrationType {
	return []IntegrationType{
		IntegrationSlack,
		IntegrationGoogleCalendar,
		IntegrationDiscord,
	}
}

// IsValid checks if the integration type is supported
func (t IntegrationType) IsValid() bool {
	switch t {
	case IntegrationSlack,
		IntegrationGoogleCalendar,
		IntegrationDiscord:
		return true
	default:
		return false
	}
}

// String returns the string representation of the integration type
func (t IntegrationType) String() string {
	return string(t)
}

// ParseIntegrationType parses a string into an IntegrationType
func ParseIntegrationType(s string) (IntegrationType, error) {
	t := IntegrationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid integration type: %s", s)
	}
	return t, nil
}
