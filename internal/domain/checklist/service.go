package checklist

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"permit-tracker-go/internal/domain"
	"permit-tracker-go/internal/domain/document"
	"permit-tracker-go/internal/domain/permit"
)

// PackageAuthorizer loads a package on behalf of a user, failing when the
// package is missing or not theirs.
type PackageAuthorizer interface {
	Authorize(ctx context.Context, userID, packageID string, action permit.Action) (*permit.Package, error)
}

type Service struct {
	repo     Repository
	packages PackageAuthorizer
	cache    Cache
	now      func() time.Time
}

func NewService(repo Repository, packages PackageAuthorizer, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:     repo,
		packages: packages,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListItems returns the checklist definition for a county and project type
// ordered for display.
func (s *Service) ListItems(ctx context.Context, countyID string, projectType permit.ProjectType) ([]Item, error) {
	if !projectType.Valid() {
		return nil, domain.NewValidationError("projectType", "is not a known project type")
	}
	if cached, ok := s.cache.Get(countyID, projectType); ok {
		return cached, nil
	}

	items, err := s.repo.ListItems(ctx, countyID, projectType)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	s.cache.Set(countyID, projectType, items)
	return items, nil
}

func (s *Service) ListProgress(ctx context.Context, userID, packageID string) ([]Progress, error) {
	if _, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionRead); err != nil {
		return nil, err
	}

	progress, err := s.repo.ListProgress(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []Progress{}
	}
	return progress, nil
}

// UpdateProgress records the completion state and notes of one item. Notes
// are always overwritten; completedAt is set to the write time when the item
// is completed and cleared otherwise.
func (s *Service) UpdateProgress(ctx context.Context, userID, packageID, itemID string, input UpdateProgressInput) (*Progress, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionWrite)
	if err != nil {
		return nil, err
	}

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, ErrItemNotFound
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CountyID != pkg.CountyID || item.ProjectType != pkg.ProjectType {
		return nil, domain.NewValidationError("itemId", "does not belong to this package's checklist")
	}

	var stored *Progress
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		now := s.now()
		progress := &Progress{
			ID:              uuid.NewString(),
			PackageID:       pkg.ID,
			ChecklistItemID: item.ID,
			IsCompleted:     input.IsCompleted,
			Notes:           input.Notes,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if input.IsCompleted {
			progress.CompletedAt = &now
		}

		var err error
		stored, err = tx.UpsertProgress(ctx, progress, input.ExpectedVersion)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Summary counts completed items against the package's checklist
// definition. Progress rows for items outside the definition are ignored.
func (s *Service) Summary(ctx context.Context, userID, packageID string) (Summary, error) {
	pkg, err := s.packages.Authorize(ctx, userID, packageID, permit.ActionRead)
	if err != nil {
		return Summary{}, err
	}

	items, err := s.ListItems(ctx, pkg.CountyID, pkg.ProjectType)
	if err != nil {
		return Summary{}, err
	}
	progress, err := s.repo.ListProgress(ctx, pkg.ID)
	if err != nil {
		return Summary{}, err
	}

	completed := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.IsCompleted {
			completed[p.ChecklistItemID] = true
		}
	}

	var summary Summary
	for _, item := range items {
		summary.Total++
		if item.IsRequired {
			summary.RequiredTotal++
		}
		if completed[item.ID] {
			summary.Completed++
			if item.IsRequired {
				summary.RequiredCompleted++
			}
		}
	}
	summary.Percent = CompletionPercent(summary.Completed, summary.Total)
	return summary, nil
}

// EnsureItem creates the definition unless one with the same county,
// project type and title exists. The boolean reports whether a row was
// inserted.
func (s *Service) EnsureItem(ctx context.Context, input CreateItemInput) (*Item, bool, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, false, domain.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(input.CountyID) == "" {
		return nil, false, domain.NewValidationError("countyId", "is required")
	}
	if !input.ProjectType.Valid() {
		return nil, false, domain.NewValidationError("projectType", "is not a known project type")
	}

	if dt := strings.TrimSpace(input.DocumentType); dt != "" && !document.Type(dt).Valid() {
		return nil, false, domain.NewValidationError("documentType", "is not a known document type")
	}

	existing, err := s.repo.FindItem(ctx, input.CountyID, input.ProjectType, title)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrItemNotFound) {
		return nil, false, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}
	item := Item{
		ID:           uuid.NewString(),
		CountyID:     input.CountyID,
		ProjectType:  input.ProjectType,
		Title:        title,
		Description:  optional(input.Description),
		IsRequired:   input.IsRequired,
		DocumentType: optional(input.DocumentType),
		Category:     category,
		Order:        input.Order,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, false, err
	}

	s.cache.Clear()
	return &item, true, nil
}

// CompletionPercent is completed/total as a whole percentage, rounded half
// away from zero. It is 0 when nothing is defined.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
