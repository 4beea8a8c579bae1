package permit

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionFollowsWorkflow(t *testing.T) {
	allowed := [][2]Status{
		{StatusDraft, StatusPending},
		{StatusPending, StatusDraft},
		{StatusPending, StatusUnderReview},
		{StatusUnderReview, StatusApproved},
		{StatusUnderReview, StatusRejected},
		{StatusApproved, StatusIssued},
		{StatusRejected, StatusDraft},
		{StatusIssued, StatusExpired},
		{StatusExpired, StatusExpired},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]Status{
		{StatusDraft, StatusApproved},
		{StatusDraft, StatusIssued},
		{StatusPending, StatusApproved},
		{StatusApproved, StatusDraft},
		{StatusExpired, StatusDraft},
		{StatusIssued, StatusApproved},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}

func TestNextStatuses(t *testing.T) {
	next := NextStatuses(StatusUnderReview)
	if len(next) != 2 || next[0] != StatusApproved || next[1] != StatusRejected {
		t.Fatalf("unexpected next statuses %v", next)
	}
	if len(NextStatuses(StatusExpired)) != 0 {
		t.Fatalf("expected expired to be terminal")
	}
}

func TestStatusPolicy(t *testing.T) {
	strict := StatusPolicy{Strict: true}
	if err := strict.Check(StatusDraft, StatusIssued); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if err := strict.Check(StatusDraft, StatusPending); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}

	lenient := StatusPolicy{}
	if err := lenient.Check(StatusDraft, StatusIssued); err != nil {
		t.Fatalf("expected lenient policy to allow any status, got %v", err)
	}
	if err := lenient.Check(StatusDraft, Status("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected unknown status rejected, got %v", err)
	}
}

func TestApplyStatusStampsOnce(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	pkg := &Package{Status: StatusDraft}

	applyStatus(pkg, StatusPending, first)
	if pkg.SubmittedAt == nil || !pkg.SubmittedAt.Equal(first) {
		t.Fatalf("expected submittedAt stamped, got %v", pkg.SubmittedAt)
	}

	applyStatus(pkg, StatusDraft, later)
	applyStatus(pkg, StatusPending, later)
	if !pkg.SubmittedAt.Equal(first) {
		t.Fatalf("expected submittedAt kept, got %v", pkg.SubmittedAt)
	}

	applyStatus(pkg, StatusApproved, later)
	applyStatus(pkg, StatusIssued, later)
	if pkg.ApprovedAt == nil || pkg.IssuedAt == nil {
		t.Fatalf("expected approvedAt and issuedAt stamped")
	}
}

func TestBucketStats(t *testing.T) {
	counts := map[Status]int64{}
	for _, status := range []Status{
		StatusDraft, StatusPending, StatusApproved, StatusIssued,
		StatusUnderReview, StatusRejected, StatusExpired,
	} {
		counts[status]++
	}

	stats := BucketStats(counts)
	if stats.Active != 2 || stats.Approved != 2 || stats.UnderReview != 1 || stats.Issues != 2 {
		t.Fatalf("unexpected buckets %+v", stats)
	}
}

func TestAuthorize(t *testing.T) {
	pkg := &Package{ID: "p-1", OwnerID: "owner"}
	if err := Authorize("owner", pkg, ActionWrite); err != nil {
		t.Fatalf("expected owner allowed, got %v", err)
	}
	if err := Authorize("other", pkg, ActionRead); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := Authorize("owner", nil, ActionRead); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
