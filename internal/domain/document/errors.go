package document

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrObjectNotOwned   = errors.New("object was uploaded by another user")
	ErrObjectInUse      = errors.New("object is already attached to a document")
)
