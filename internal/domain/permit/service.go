package permit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"permit-tracker-go/internal/domain"
	countydomain "permit-tracker-go/internal/domain/county"
)

type CountyLookup interface {
	Get(ctx context.Context, id string) (*countydomain.County, error)
}

type ObjectRemover interface {
	Delete(ctx context.Context, objectPath string) error
}

type Service struct {
	repo     Repository
	counties CountyLookup
	objects  ObjectRemover
	policy   StatusPolicy
	now      func() time.Time
}

func NewService(repo Repository, counties CountyLookup, objects ObjectRemover, strictStatus bool) *Service {
	return &Service{
		repo:     repo,
		counties: counties,
		objects:  objects,
		policy:   StatusPolicy{Strict: strictStatus},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, input CreatePackageInput) (*Package, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	address := strings.TrimSpace(input.ProjectAddress)
	if address == "" {
		return nil, domain.NewValidationError("projectAddress", "is required")
	}
	if !input.ProjectType.Valid() {
		return nil, domain.NewValidationError("projectType", "is not a known project type")
	}
	if input.ConstructionValue != nil && *input.ConstructionValue < 0 {
		return nil, domain.NewValidationError("constructionValue", "must be non-negative")
	}
	if err := s.checkCounty(ctx, input.CountyID); err != nil {
		return nil, err
	}

	now := s.now()
	pkg := Package{
		ID:                uuid.NewString(),
		Name:              name,
		Description:       optional(input.Description),
		ProjectAddress:    address,
		ProjectType:       input.ProjectType,
		ConstructionValue: input.ConstructionValue,
		Status:            StatusDraft,
		CountyID:          strings.TrimSpace(input.CountyID),
		OwnerID:           ownerID,
		PermitNumber:      optional(input.PermitNumber),
		ExpiresAt:         input.ExpiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if input.Status != nil {
		if err := s.policy.Check(StatusDraft, *input.Status); err != nil {
			return nil, err
		}
		applyStatus(&pkg, *input.Status, now)
	}

	if err := s.repo.Create(ctx, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Authorize fetches a package and checks that userID may perform action on
// it. It distinguishes a missing package from one owned by someone else.
func (s *Service) Authorize(ctx context.Context, userID, packageID string, action Action) (*Package, error) {
	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return nil, ErrPackageNotFound
	}

	pkg, err := s.repo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(userID, pkg, action); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *Service) List(ctx context.Context, ownerID string, filter ListFilter) ([]Package, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "is not a known status")
	}
	filter.CountyID = strings.TrimSpace(filter.CountyID)
	filter.Search = strings.TrimSpace(filter.Search)

	packages, err := s.repo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	if packages == nil {
		packages = []Package{}
	}
	return packages, nil
}

func (s *Service) Update(ctx context.Context, userID, packageID string, input UpdatePackageInput) (*Package, error) {
	if input.Empty() {
		return nil, domain.NewValidationError("", "no fields to update")
	}

	pkg, err := s.Authorize(ctx, userID, packageID, ActionWrite)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "is required")
		}
		pkg.Name = name
	}
	if input.Description != nil {
		pkg.Description = optional(*input.Description)
	}
	if input.ProjectAddress != nil {
		address := strings.TrimSpace(*input.ProjectAddress)
		if address == "" {
			return nil, domain.NewValidationError("projectAddress", "is required")
		}
		pkg.ProjectAddress = address
	}
	if input.ProjectType != nil {
		if !input.ProjectType.Valid() {
			return nil, domain.NewValidationError("projectType", "is not a known project type")
		}
		pkg.ProjectType = *input.ProjectType
	}
	if input.ConstructionValue != nil {
		if *input.ConstructionValue < 0 {
			return nil, domain.NewValidationError("constructionValue", "must be non-negative")
		}
		pkg.ConstructionValue = input.ConstructionValue
	}
	if input.CountyID != nil {
		if err := s.checkCounty(ctx, *input.CountyID); err != nil {
			return nil, err
		}
		pkg.CountyID = strings.TrimSpace(*input.CountyID)
	}
	if input.PermitNumber != nil {
		pkg.PermitNumber = optional(*input.PermitNumber)
	}
	if input.ExpiresAt != nil {
		expiresAt := input.ExpiresAt.UTC()
		pkg.ExpiresAt = &expiresAt
	}

	now := s.now()
	if input.Status != nil {
		if err := s.policy.Check(pkg.Status, *input.Status); err != nil {
			return nil, err
		}
		applyStatus(pkg, *input.Status, now)
	}
	pkg.UpdatedAt = now

	if err := s.repo.Update(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Delete removes a package together with its checklist progress and
// document rows in one transaction. Stored objects are removed afterwards;
// objects that could not be removed are reported, not returned as an error.
func (s *Service) Delete(ctx context.Context, userID, packageID string) (DeleteResult, error) {
	pkg, err := s.Authorize(ctx, userID, packageID, ActionDelete)
	if err != nil {
		return DeleteResult{}, err
	}

	var objectPaths []string
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		paths, err := tx.DeleteChildren(ctx, pkg.ID)
		if err != nil {
			return err
		}
		deleted, err := tx.Delete(ctx, pkg.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrPackageNotFound
		}
		objectPaths = paths
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{}
	for _, path := range objectPaths {
		if s.objects == nil {
			result.FailedObjects = append(result.FailedObjects, path)
			continue
		}
		if err := s.objects.Delete(ctx, path); err != nil {
			result.FailedObjects = append(result.FailedObjects, path)
			continue
		}
		result.RemovedObjects = append(result.RemovedObjects, path)
	}
	return result, nil
}

func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	return BucketStats(counts), nil
}

func (s *Service) checkCounty(ctx context.Context, countyID string) error {
	countyID = strings.TrimSpace(countyID)
	if countyID == "" {
		return domain.NewValidationError("countyId", "is required")
	}
	if s.counties == nil {
		return nil
	}
	if _, err := s.counties.Get(ctx, countyID); err != nil {
		if errors.Is(err, countydomain.ErrCountyNotFound) {
			return domain.NewValidationError("countyId", "does not reference a known county")
		}
		return err
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
