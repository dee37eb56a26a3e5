package award

import "errors"

var (
	// ErrRollbackNotSupported indicates that an award can't be undone.
	ErrRollbackNotSupported = errors.New("rollback not supported for this award")

	// ErrAwardNotFound indicates that a requested award doesn't exist in the registry.
	ErrAwardNotFound = errors.New("award not found in registry")

	// ErrInvalidConfig indicates that an award's configuration is invalid.
	ErrInvalidConfig = errors.New("invalid award configuration")
)
