package shepherd

import (
	"errors"
	"fmt"
)

// Error taxonomy: every public façade call returns a settled
// result. Failures never panic except argument-shape violations, which
// are programmer errors and are raised synchronously.
var (
	// ErrNotEnabled indicates an operation was attempted before Start.
	ErrNotEnabled = errors.New("shepherd: not enabled")

	// ErrDeviceNotFound indicates no device matched the given address.
	ErrDeviceNotFound = errors.New("shepherd: device not found")

	// ErrEndpointNotFound indicates no endpoint matched the given id.
	ErrEndpointNotFound = errors.New("shepherd: endpoint not found")

	// ErrDuplicateMount indicates the same app was mounted twice.
	ErrDuplicateMount = errors.New("shepherd: app already mounted")

	// ErrCoordinatorNotReady indicates the coordinator device does not
	// yet exist in the registry (Start has not completed).
	ErrCoordinatorNotReady = errors.New("shepherd: coordinator not ready")

	// ErrProfileUnsupported indicates no delegator endpoint exists for
	// the requested profile id.
	ErrProfileUnsupported = errors.New("shepherd: no delegator for profile")

	// ErrAlreadyEnabled indicates Start was called while already enabled.
	ErrAlreadyEnabled = errors.New("shepherd: already enabled")

	// ErrDuplicateRegistration indicates register() was called with a
	// registry id that already exists.
	ErrDuplicateRegistration = errors.New("shepherd: duplicate registration")

	// errClusterListCollision indicates a mounted app's descriptor lists
	// the same cluster id as both input and output.
	errClusterListCollision = errors.New("shepherd: cluster id present in both input and output lists")
)

// RequestUnsuccessError wraps a non-zero ZCL/ZDO status code returned by
// the radio ("request unsuccess: 134").
type RequestUnsuccessError struct {
	Status uint8
}

func (e *RequestUnsuccessError) Error() string {
	return fmt.Sprintf("request unsuccess: %d", e.Status)
}

// IsRequestUnsuccess reports whether err is a RequestUnsuccessError and
// returns its status code.
func IsRequestUnsuccess(err error) (uint8, bool) {
	var rue *RequestUnsuccessError
	if errors.As(err, &rue) {
		return rue.Status, true
	}
	return 0, false
}

// TransportError wraps an error bubbled from the Controller (radio
// client / serial transport).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a TransportError for operation op. If
// err is nil, NewTransportError returns nil.
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// PersistenceError wraps an error bubbled from the DevBox store. It is
// non-fatal during reset; callers that can tolerate it log and continue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err as a PersistenceError for operation op.
// If err is nil, NewPersistenceError returns nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
