package checklist

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	permitdomain "permit-tracker-go/internal/domain/permit"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(checklistdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListItems(ctx context.Context, countyID string, projectType permitdomain.ProjectType) ([]checklistdomain.Item, error) {
	var items []checklistdomain.Item
	if err := r.db.WithContext(ctx).
		Where("county_id = ? AND project_type = ?", countyID, projectType).
		Order("sort_order asc, title asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, id string) (*checklistdomain.Item, error) {
	return firstItem(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PostgresRepository) FindItem(ctx context.Context, countyID string, projectType permitdomain.ProjectType, title string) (*checklistdomain.Item, error) {
	return firstItem(r.db.WithContext(ctx).Where("county_id = ? AND project_type = ? AND title = ?", countyID, projectType, title))
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item *checklistdomain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *PostgresRepository) ListProgress(ctx context.Context, packageID string) ([]checklistdomain.Progress, error) {
	var progress []checklistdomain.Progress
	if err := r.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("created_at asc, id asc").
		Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *PostgresRepository) GetProgress(ctx context.Context, packageID, itemID string) (*checklistdomain.Progress, error) {
	var progress checklistdomain.Progress
	if err := r.db.WithContext(ctx).
		Where("package_id = ? AND checklist_item_id = ?", packageID, itemID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checklistdomain.ErrProgressNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (r *PostgresRepository) UpsertProgress(ctx context.Context, progress *checklistdomain.Progress, expectedVersion *int) (*checklistdomain.Progress, error) {
	db := r.db.WithContext(ctx)

	switch {
	case expectedVersion == nil:
		err := db.Clauses(clause.OnConflict{
			Columns: progressConflictColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_completed": progress.IsCompleted,
				"completed_at": progress.CompletedAt,
				"notes":        progress.Notes,
				"updated_at":   progress.UpdatedAt,
				"version":      gorm.Expr("package_checklist_progress.version + 1"),
			}),
		}).Create(progress).Error
		if err != nil {
			return nil, err
		}

	case *expectedVersion == 0:
		result := db.Clauses(clause.OnConflict{
			Columns:   progressConflictColumns,
			DoNothing: true,
		}).Create(progress)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, checklistdomain.ErrProgressConflict
		}

	default:
		// The version predicate is re-checked after any row lock wait, so
		// of two writers holding the same version only one matches.
		result := db.Model(&checklistdomain.Progress{}).
			Where("package_id = ? AND checklist_item_id = ? AND version = ?",
				progress.PackageID, progress.ChecklistItemID, *expectedVersion).
			Updates(map[string]interface{}{
				"is_completed": progress.IsCompleted,
				"completed_at": progress.CompletedAt,
				"notes":        progress.Notes,
				"updated_at":   progress.UpdatedAt,
				"version":      gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, checklistdomain.ErrProgressConflict
		}
	}

	return r.GetProgress(ctx, progress.PackageID, progress.ChecklistItemID)
}

var progressConflictColumns = []clause.Column{{Name: "package_id"}, {Name: "checklist_item_id"}}

func firstItem(query *gorm.DB) (*checklistdomain.Item, error) {
	var item checklistdomain.Item
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checklistdomain.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}
