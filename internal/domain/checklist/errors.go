package checklist

import "errors"

var (
	ErrItemNotFound     = errors.New("checklist item not found")
	ErrProgressNotFound = errors.New("checklist progress not found")
	ErrProgressConflict = errors.New("checklist progress was modified concurrently")
)
