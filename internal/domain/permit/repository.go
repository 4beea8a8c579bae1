package permit

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, pkg *Package) error
	GetByID(ctx context.Context, id string) (*Package, error)
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]Package, error)
	Update(ctx context.Context, pkg *Package) error
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteChildren removes the package's checklist progress and document
	// rows and returns the object paths that no remaining document
	// references, each once.
	DeleteChildren(ctx context.Context, packageID string) ([]string, error)
	CountByStatus(ctx context.Context, ownerID string) (map[Status]int64, error)
}
