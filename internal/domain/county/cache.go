package county

type Cache interface {
	GetAll() ([]County, bool)
	SetAll(counties []County)
	Clear()
}

type noopCache struct{}

func (noopCache) GetAll() ([]County, bool) {
	return nil, false
}

func (noopCache) SetAll([]County) {}

func (noopCache) Clear() {}
