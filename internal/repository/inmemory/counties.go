package inmemory

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	countydomain "permit-tracker-go/internal/domain/county"
)

const countiesKey = "all"

// InMemoryCountiesCache holds the full county list for a TTL.
type InMemoryCountiesCache struct {
	lru *expirable.LRU[string, []countydomain.County]
}

func NewInMemoryCountiesCache(ttl time.Duration) *InMemoryCountiesCache {
	return &InMemoryCountiesCache{
		lru: expirable.NewLRU[string, []countydomain.County](1, nil, ttl),
	}
}

func (c *InMemoryCountiesCache) GetAll() ([]countydomain.County, bool) {
	counties, ok := c.lru.Get(countiesKey)
	if !ok {
		return nil, false
	}
	return cloneCounties(counties), true
}

func (c *InMemoryCountiesCache) SetAll(counties []countydomain.County) {
	c.lru.Add(countiesKey, cloneCounties(counties))
}

func (c *InMemoryCountiesCache) Clear() {
	c.lru.Purge()
}

func cloneCounties(counties []countydomain.County) []countydomain.County {
	if counties == nil {
		return nil
	}
	cloned := make([]countydomain.County, len(counties))
	for i := range counties {
		cloned[i] = counties[i]
		cloned[i].BuildingDeptPhone = cloneString(counties[i].BuildingDeptPhone)
		cloned[i].BuildingDeptEmail = cloneString(counties[i].BuildingDeptEmail)
		cloned[i].BuildingDeptWebsite = cloneString(counties[i].BuildingDeptWebsite)
	}
	return cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
