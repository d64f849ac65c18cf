package application

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects a login or the
	// submitted credentials are empty.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrUnauthorized is returned when no valid session accompanies an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrSessionExpired is returned when the session token exists but its validity window has passed.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrForbidden is returned when the administration key does not match.
	ErrForbidden = errors.New("application: forbidden")
	// ErrBackendUnavailable is returned when the remote service cannot be reached.
	ErrBackendUnavailable = errors.New("application: backend unavailable")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
