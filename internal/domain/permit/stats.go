package permit

// BucketStats folds per-status counts into the dashboard buckets.
func BucketStats(counts map[Status]int64) Stats {
	var stats Stats
	for status, count := range counts {
		switch status {
		case StatusDraft, StatusPending:
			stats.Active += count
		case StatusApproved, StatusIssued:
			stats.Approved += count
		case StatusUnderReview:
			stats.UnderReview += count
		case StatusRejected, StatusExpired:
			stats.Issues += count
		}
	}
	return stats
}
