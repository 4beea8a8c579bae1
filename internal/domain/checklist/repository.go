package checklist

import (
	"context"

	"permit-tracker-go/internal/domain/permit"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	ListItems(ctx context.Context, countyID string, projectType permit.ProjectType) ([]Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	FindItem(ctx context.Context, countyID string, projectType permit.ProjectType, title string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error

	ListProgress(ctx context.Context, packageID string) ([]Progress, error)
	GetProgress(ctx context.Context, packageID, itemID string) (*Progress, error)
	// UpsertProgress inserts the row or, on a (package, item) conflict,
	// overwrites completion and notes and bumps the version. It returns the
	// stored row. With expectedVersion set the write only happens while the
	// stored version still equals it (0 meaning no row yet), atomically with
	// the check; otherwise it fails with ErrProgressConflict.
	UpsertProgress(ctx context.Context, progress *Progress, expectedVersion *int) (*Progress, error)
}
