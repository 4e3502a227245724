package identity

import "errors"

// Session errors.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrDuplicateAccount    = errors.New("user with this email already exists")
	ErrOperationInProgress = errors.New("another login or signup is in progress")
	ErrInvalidSessionData  = errors.New("invalid persisted session")
)
