package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Remote connector errors
	ErrNotConfigured      = fmt.Errorf("remote not configured")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrQueryFailed        = fmt.Errorf("query failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Controller errors
	ErrInitialization    = fmt.Errorf("failed to initialize the application")
	ErrRetryUnavailable  = fmt.Errorf("retry unavailable: remote already reachable")
	ErrReloadUnavailable = fmt.Errorf("reload unavailable: catalog is not empty")

	// Lookup and validation errors
	ErrCourseNotFound  = fmt.Errorf("course not found")
	ErrInvalidStatus   = fmt.Errorf("invalid course status")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
