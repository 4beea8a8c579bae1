package inmemory

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	checklistdomain "permit-tracker-go/internal/domain/checklist"
	permitdomain "permit-tracker-go/internal/domain/permit"
)

// InMemoryChecklistCache holds checklist definitions per county and project
// type, bounded in size and age.
type InMemoryChecklistCache struct {
	lru *expirable.LRU[string, []checklistdomain.Item]
}

func NewInMemoryChecklistCache(size int, ttl time.Duration) *InMemoryChecklistCache {
	if size <= 0 {
		size = 1
	}
	return &InMemoryChecklistCache{
		lru: expirable.NewLRU[string, []checklistdomain.Item](size, nil, ttl),
	}
}

func (c *InMemoryChecklistCache) Get(countyID string, projectType permitdomain.ProjectType) ([]checklistdomain.Item, bool) {
	items, ok := c.lru.Get(checklistKey(countyID, projectType))
	if !ok {
		return nil, false
	}
	return cloneItems(items), true
}

func (c *InMemoryChecklistCache) Set(countyID string, projectType permitdomain.ProjectType, items []checklistdomain.Item) {
	c.lru.Add(checklistKey(countyID, projectType), cloneItems(items))
}

func (c *InMemoryChecklistCache) Clear() {
	c.lru.Purge()
}

func checklistKey(countyID string, projectType permitdomain.ProjectType) string {
	return countyID + "|" + string(projectType)
}

func cloneItems(items []checklistdomain.Item) []checklistdomain.Item {
	if items == nil {
		return nil
	}
	cloned := make([]checklistdomain.Item, len(items))
	for i := range items {
		cloned[i] = items[i]
		cloned[i].Description = cloneString(items[i].Description)
		cloned[i].DocumentType = cloneString(items[i].DocumentType)
	}
	return cloned
}
