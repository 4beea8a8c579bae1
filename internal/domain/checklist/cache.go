package checklist

import "permit-tracker-go/internal/domain/permit"

// Cache holds checklist definitions per (county, project type).
type Cache interface {
	Get(countyID string, projectType permit.ProjectType) ([]Item, bool)
	Set(countyID string, projectType permit.ProjectType, items []Item)
	Clear()
}

type noopCache struct{}

func (noopCache) Get(string, permit.ProjectType) ([]Item, bool) { return nil, false }
func (noopCache) Set(string, permit.ProjectType, []Item)        {}
func (noopCache) Clear()                                        {}
