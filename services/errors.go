package services

import (
	"errors"
	"fmt"

	"hostel-complaint-api/models"
)

var (
	ErrComplaintNotFound    = errors.New("complaint not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")

	ErrAlreadyRejected        = errors.New("complaint already rejected")
	ErrResolvedNotRejectable  = errors.New("cannot reject a resolved complaint")
	ErrConcurrentModification = errors.New("complaint was modified concurrently, please retry")

	ErrForbidden = errors.New("you are not allowed to access this resource")
)

// ValidationError is returned when caller input breaks a field rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a status update that the transition table forbids.
type InvalidTransitionError struct {
	From    models.ComplaintStatus
	To      models.ComplaintStatus
	Allowed []models.ComplaintStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Invalid status transition from %q to %q. Allowed: %s",
		e.From, e.To, models.JoinStatuses(e.Allowed))
}

// DependencyError wraps a failure of the database or another backing service.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func dependencyError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dep *DependencyError
	if errors.As(err, &dep) {
		return err
	}
	return &DependencyError{Op: op, Err: err}
}

// IsConflict reports whether err is one of the reject/concurrency conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyRejected) ||
		errors.Is(err, ErrResolvedNotRejectable) ||
		errors.Is(err, ErrConcurrentModification)
}
