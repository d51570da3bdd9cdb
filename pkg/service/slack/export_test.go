package slack

// Export internal functions for testing
var (
	// Truncate is exported for testing rune-safe truncation
	Truncate = truncate
)
