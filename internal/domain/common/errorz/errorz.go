package errorz

import (
	"errors"
	"fmt"
)

var (
	// Unauthorized is the root of every permission failure
	Unauthorized = errors.New("unauthorized")
	// NotFound is the root of every missing-record failure
	NotFound = errors.New("not found")

	ErrAuthRequired  = &PermissionError{Message: "Please sign in to continue"}
	ErrAdminRequired = &PermissionError{Message: "Unauthorized: Admin access required"}
	ErrBanned        = &PermissionError{Message: "Your account has been banned"}
	ErrEmailTaken    = &PermissionError{Message: "This email is already linked to another account"}

	ErrEventNotFound = &MissingError{Message: "Event not found"}
	ErrBlastNotFound = &MissingError{Message: "Blast not found"}
	ErrUserNotFound  = &MissingError{Message: "User not found"}

	ErrCannotBanSelf    = &UserError{Message: "Cannot ban yourself"}
	ErrCannotRevokeSelf = &UserError{Message: "Cannot revoke your own admin status"}
)

// PermissionError is returned when the caller may not perform an operation.
// errors.Is(err, Unauthorized) holds for every PermissionError.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

func (e *PermissionError) Is(target error) bool { return target == Unauthorized }

// NotOwner builds the "not your resource" error for a record kind ("update this event").
func NotOwner(action string) *PermissionError {
	return &PermissionError{Message: fmt.Sprintf("You do not have permission to %s", action)}
}

// MissingError is returned when a referenced record does not exist.
type MissingError struct {
	Message string
}

func (e *MissingError) Error() string { return e.Message }

func (e *MissingError) Is(target error) bool { return target == NotFound }

// ValidationError reports the first violated field constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UserError is an explanatory refusal shown to the user as is.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// PersistenceError wraps a failed storage call. Error() is safe to show to
// clients; the underlying cause is only reachable through Unwrap.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Failed to %s. Please try again.", e.Op)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err unless it is nil or already a domain error.
func Persistence(op string, err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomain reports whether err is one of the user-presentable error kinds.
func IsDomain(err error) bool {
	var (
		validation  *ValidationError
		user        *UserError
		persistence *PersistenceError
	)
	return errors.Is(err, Unauthorized) ||
		errors.Is(err, NotFound) ||
		errors.As(err, &validation) ||
		errors.As(err, &user) ||
		errors.As(err, &persistence)
}
