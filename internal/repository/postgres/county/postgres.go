package county

import (
	"context"
	"errors"

	"gorm.io/gorm"

	countydomain "permit-tracker-go/internal/domain/county"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]countydomain.County, error) {
	var counties []countydomain.County
	if err := r.db.WithContext(ctx).Order("name asc").Find(&counties).Error; err != nil {
		return nil, err
	}
	return counties, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*countydomain.County, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*countydomain.County, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PostgresRepository) Create(ctx context.Context, county *countydomain.County) error {
	if err := r.db.WithContext(ctx).Create(county).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return countydomain.ErrCountyExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) first(ctx context.Context, query string, args ...interface{}) (*countydomain.County, error) {
	var county countydomain.County
	if err := r.db.WithContext(ctx).Where(query, args...).First(&county).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, countydomain.ErrCountyNotFound
		}
		return nil, err
	}
	return &county, nil
}
