package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrProfileNotFound     = errors.New("profile not found")
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrMessageNotFound     = errors.New("message not found")

	// Conflict errors
	ErrProfileExists = errors.New("profile or username already exists")

	// State errors
	ErrDetailsWhileAvailable = errors.New("details cannot be edited while available")
	ErrDashboardClosed       = errors.New("dashboard session is closed")

	// Access control errors
	ErrUnauthenticated = errors.New("authentication required")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// Context keys for error values
const (
	UserIDKey          = "user_id"
	UsernameKey        = "username"
	MessageIDKey       = "message_id"
	IntegrationTypeKey = "integration_type"
)
