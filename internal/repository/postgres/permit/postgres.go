package permit

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	documentdomain "permit-tracker-go/internal/domain/document"
	permitdomain "permit-tracker-go/internal/domain/permit"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(permitdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, pkg *permitdomain.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*permitdomain.Package, error) {
	var pkg permitdomain.Package
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permitdomain.ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

// ListByOwner applies the optional filters and returns the most recently
// updated packages first. Search is a case-insensitive substring match on
// name or address.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, filter permitdomain.ListFilter) ([]permitdomain.Package, error) {
	query := r.db.WithContext(ctx).Model(&permitdomain.Package{}).Where("owner_id = ?", ownerID)
	if filter.CountyID != "" {
		query = query.Where("county_id = ?", filter.CountyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(project_address) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var packages []permitdomain.Package
	if err := query.Order("updated_at desc, id asc").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PostgresRepository) Update(ctx context.Context, pkg *permitdomain.Package) error {
	result := r.db.WithContext(ctx).
		Model(&permitdomain.Package{}).
		Where("id = ?", pkg.ID).
		Updates(map[string]interface{}{
			"name":               pkg.Name,
			"description":        pkg.Description,
			"project_address":    pkg.ProjectAddress,
			"project_type":       pkg.ProjectType,
			"construction_value": pkg.ConstructionValue,
			"status":             pkg.Status,
			"county_id":          pkg.CountyID,
			"permit_number":      pkg.PermitNumber,
			"submitted_at":       pkg.SubmittedAt,
			"approved_at":        pkg.ApprovedAt,
			"issued_at":          pkg.IssuedAt,
			"expires_at":         pkg.ExpiresAt,
			"updated_at":         pkg.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return permitdomain.ErrPackageNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&permitdomain.Package{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteChildren(ctx context.Context, packageID string) ([]string, error) {
	db := r.db.WithContext(ctx)

	var objectPaths []string
	if err := db.Model(&documentdomain.Document{}).
		Where("package_id = ?", packageID).
		Order("created_at asc").
		Pluck("object_path", &objectPaths).Error; err != nil {
		return nil, err
	}

	if err := db.Where("package_id = ?", packageID).Delete(&checklistdomain.Progress{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("package_id = ?", packageID).Delete(&documentdomain.Document{}).Error; err != nil {
		return nil, err
	}
	if len(objectPaths) == 0 {
		return objectPaths, nil
	}

	var stillReferenced []string
	if err := db.Model(&documentdomain.Document{}).
		Where("object_path IN ?", objectPaths).
		Distinct().
		Pluck("object_path", &stillReferenced).Error; err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(stillReferenced))
	for _, path := range stillReferenced {
		skip[path] = struct{}{}
	}

	unreferenced := make([]string, 0, len(objectPaths))
	for _, path := range objectPaths {
		if _, ok := skip[path]; ok {
			continue
		}
		skip[path] = struct{}{}
		unreferenced = append(unreferenced, path)
	}
	return unreferenced, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, ownerID string) (map[permitdomain.Status]int64, error) {
	var rows []struct {
		Status permitdomain.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&permitdomain.Package{}).
		Select("status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[permitdomain.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
