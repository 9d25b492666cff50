package storage

import "errors"

// Sentinel errors for archive operations. Callers branch with errors.Is;
// implementations may wrap these with context.
var (
	ErrNotFound    = errors.New("storage: artifact not found")
	ErrInvalidCID  = errors.New("storage: invalid artifact cid")
	ErrCIDMismatch = errors.New("storage: artifact bytes do not match cid")
	ErrImmutable   = errors.New("storage: stored artifact differs from bytes written")
)

// IsNotFound reports whether err means the requested artifact is absent.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
