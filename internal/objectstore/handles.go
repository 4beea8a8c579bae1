package objectstore

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxPendingUploads = 10000

type pendingUpload struct {
	owner     string
	expiresAt time.Time
}

// pendingUploads remembers issued upload handles until they are used or
// expire, so that bytes can only be written to a path this server handed
// out, and only by the user it was handed to.
type pendingUploads struct {
	handles *expirable.LRU[string, pendingUpload]
}

func newPendingUploads(ttl time.Duration) *pendingUploads {
	return &pendingUploads{
		handles: expirable.NewLRU[string, pendingUpload](maxPendingUploads, nil, ttl),
	}
}

func (p *pendingUploads) issue(objectPath, owner string, expiresAt time.Time) {
	p.handles.Add(objectPath, pendingUpload{owner: owner, expiresAt: expiresAt})
}

// pending reports whether objectPath was issued to owner and not yet used.
func (p *pendingUploads) pending(objectPath, owner string) bool {
	upload, ok := p.handles.Get(objectPath)
	return ok && upload.owner == owner
}

func (p *pendingUploads) complete(objectPath string) {
	p.handles.Remove(objectPath)
}
