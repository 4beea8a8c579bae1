package document

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	ListByPackage(ctx context.Context, packageID string) ([]Document, error)
	// FindByObjectPath returns the oldest document referencing the path.
	FindByObjectPath(ctx context.Context, objectPath string) (*Document, error)
	CountByObjectPath(ctx context.Context, objectPath string) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}
