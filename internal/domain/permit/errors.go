package permit

import "errors"

var (
	ErrPackageNotFound   = errors.New("package not found")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid status transition")
)
