package county

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns every jurisdiction ordered by name. Jurisdictions only change
// through seeding, so the result is served from cache when possible.
func (s *Service) List(ctx context.Context) ([]County, error) {
	if cached, ok := s.cache.GetAll(); ok {
		return cached, nil
	}

	counties, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetAll(counties)
	return counties, nil
}

func (s *Service) Get(ctx context.Context, id string) (*County, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrCountyNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Resolve looks a jurisdiction up by id first and by slug second.
func (s *Service) Resolve(ctx context.Context, idOrSlug string) (*County, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, ErrCountyNotFound
	}

	county, err := s.repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return county, nil
	}
	if !errors.Is(err, ErrCountyNotFound) {
		return nil, err
	}
	return s.repo.GetBySlug(ctx, strings.ToLower(idOrSlug))
}

// Ensure creates the county unless one with the same slug exists. The
// boolean reports whether a row was inserted.
func (s *Service) Ensure(ctx context.Context, input CreateCountyInput) (*County, bool, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, false, fmt.Errorf("name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug != Slugify(slug) {
		return nil, false, fmt.Errorf("invalid slug %q", slug)
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrCountyNotFound) {
		return nil, false, err
	}

	state := strings.ToUpper(strings.TrimSpace(input.State))
	if state == "" {
		state = DefaultState
	}

	county := County{
		ID:                  uuid.NewString(),
		Name:                name,
		Slug:                slug,
		State:               state,
		BuildingDeptPhone:   optional(input.BuildingDeptPhone),
		BuildingDeptEmail:   optional(input.BuildingDeptEmail),
		BuildingDeptWebsite: optional(input.BuildingDeptWebsite),
		CreatedAt:           s.now(),
	}
	if err := s.repo.Create(ctx, &county); err != nil {
		return nil, false, err
	}

	s.cache.Clear()
	return &county, true, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
