package agenda

import "errors"

var (
	// ErrLoadFailed is returned when the remote fetch of appointments fails.
	// The prior in-memory set is retained.
	ErrLoadFailed = errors.New("agenda: load failed")
	// ErrNoClientSelected is returned when a creation is proposed without a
	// selected client. No network call is made.
	ErrNoClientSelected = errors.New("agenda: no client selected")
	// ErrCreateFailed is returned when the remote service rejects or cannot
	// be reached during a creation. The pending creation is retained.
	ErrCreateFailed = errors.New("agenda: create failed")
	// ErrUpdateFailed is returned when the remote service rejects or cannot
	// be reached during an update. The pending edit is retained.
	ErrUpdateFailed = errors.New("agenda: update failed")
	// ErrNotFound is returned when the referenced appointment is not in the
	// in-memory set.
	ErrNotFound = errors.New("agenda: appointment not found")
	// ErrNoPendingCreation is returned when a creation is confirmed or
	// amended without a staged proposal.
	ErrNoPendingCreation = errors.New("agenda: no pending creation")
	// ErrNoPendingEdit is returned when an edit is confirmed or amended
	// without a staged working copy.
	ErrNoPendingEdit = errors.New("agenda: no pending edit")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
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

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrLoadFailed):
		return "load_failed"
	case errors.Is(err, ErrNoClientSelected):
		return "no_client_selected"
	case errors.Is(err, ErrCreateFailed):
		return "create_failed"
	case errors.Is(err, ErrUpdateFailed):
		return "update_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoPendingCreation), errors.Is(err, ErrNoPendingEdit):
		return "no_pending_operation"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
