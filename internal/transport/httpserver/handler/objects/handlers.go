package objects

import (
	"context"

	documentdomain "permit-tracker-go/internal/domain/document"
	"permit-tracker-go/internal/objectstore"
	"permit-tracker-go/pkg/logger"
)

// ObjectAuthorizer decides who may read a stored object.
type ObjectAuthorizer interface {
	AuthorizeObject(ctx context.Context, userID, locator string) (*documentdomain.Document, error)
}

type Handlers struct {
	Store     objectstore.Store
	Documents ObjectAuthorizer
	log       logger.Logger
}

func New(store objectstore.Store, documents ObjectAuthorizer, log logger.Logger) *Handlers {
	return &Handlers{
		Store:     store,
		Documents: documents,
		log:       log,
	}
}
