package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrNotFound         = fmt.Errorf("record not found")
	ErrConflict         = fmt.Errorf("version conflict")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")

	// Identity errors
	ErrUnknownUser      = fmt.Errorf("unknown user")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
