package county

import "errors"

var (
	ErrCountyNotFound = errors.New("county not found")
	ErrCountyExists   = errors.New("county already exists")
)
