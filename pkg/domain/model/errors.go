package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired      = goerr.New("required field is missing")
	ErrInvalidStatus        = goerr.New("invalid status")
	ErrAvailableWithDetails = goerr.New("available status cannot carry details")
	ErrInvalidIntegration   = goerr.New("invalid integration type")
	ErrTooLong              = goerr.New("field is too long")
)

// Context keys for error values
const (
	ProfileIDKey       = "profile_id"
	StatusKey          = "status"
	IntegrationTypeKey = "integration_type"
	FieldKey           = "field"
	LengthKey          = "length"
)
