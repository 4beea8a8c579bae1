package county

import "context"

type Repository interface {
	List(ctx context.Context) ([]County, error)
	GetByID(ctx context.Context, id string) (*County, error)
	GetBySlug(ctx context.Context, slug string) (*County, error)
	Create(ctx context.Context, county *County) error
}
