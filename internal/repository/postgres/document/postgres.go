package document

import (
	"context"
	"errors"

	"gorm.io/gorm"

	documentdomain "permit-tracker-go/internal/domain/document"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(documentdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, doc *documentdomain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*documentdomain.Document, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PostgresRepository) ListByPackage(ctx context.Context, packageID string) ([]documentdomain.Document, error) {
	var docs []documentdomain.Document
	if err := r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("created_at asc, id asc").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PostgresRepository) FindByObjectPath(ctx context.Context, objectPath string) (*documentdomain.Document, error) {
	return first(r.db.WithContext(ctx).Where("object_path = ?", objectPath).Order("created_at asc, id asc"))
}

func (r *PostgresRepository) CountByObjectPath(ctx context.Context, objectPath string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&documentdomain.Document{}).
		Where("object_path = ?", objectPath).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&documentdomain.Document{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func first(query *gorm.DB) (*documentdomain.Document, error) {
	var doc documentdomain.Document
	if err := query.First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documentdomain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}
