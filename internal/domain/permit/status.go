package permit

import (
	"fmt"
	"time"
)

// validTransitions is the review workflow. Keys are the current status,
// values the statuses reachable from it in one step.
var validTransitions = map[Status]map[Status]bool{
	StatusDraft:       {StatusPending: true},
	StatusPending:     {StatusDraft: true, StatusUnderReview: true},
	StatusUnderReview: {StatusApproved: true, StatusRejected: true},
	StatusApproved:    {StatusIssued: true},
	StatusRejected:    {StatusDraft: true},
	StatusIssued:      {StatusExpired: true},
	StatusExpired:     {},
}

// CanTransition reports whether from → to is allowed by the workflow.
// Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return validTransitions[from][to]
}

// NextStatuses lists the statuses reachable from s in workflow order.
func NextStatuses(s Status) []Status {
	result := make([]Status, 0, 2)
	for _, candidate := range Statuses {
		if validTransitions[s][candidate] {
			result = append(result, candidate)
		}
	}
	return result
}

// StatusPolicy validates status changes before they are persisted.
type StatusPolicy struct {
	Strict bool
}

func (p StatusPolicy) Check(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !p.Strict {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// applyStatus sets the new status and stamps the lifecycle timestamp that
// belongs to it, keeping any stamp already present.
func applyStatus(pkg *Package, to Status, now time.Time) {
	pkg.Status = to
	switch to {
	case StatusPending:
		if pkg.SubmittedAt == nil {
			pkg.SubmittedAt = &now
		}
	case StatusApproved:
		if pkg.ApprovedAt == nil {
			pkg.ApprovedAt = &now
		}
	case StatusIssued:
		if pkg.IssuedAt == nil {
			pkg.IssuedAt = &now
		}
	}
}
