package feed

import (
	"time"

	"github.com/paystream/paystream/pkg/models"
)

// Snapshot is the full set of transfers as last observed by one session,
// keyed by transfer id. Replaced wholesale after every successful fetch;
// ids that drop out of the backend result drop out of the snapshot too.
type Snapshot map[string]models.Transfer

// ChangeResult is the outcome of comparing a fresh fetch against the
// previous snapshot. When Changed is set, Transfers holds the complete
// fetched sequence in backend order, not a delta.
type ChangeResult struct {
	Changed   bool
	Transfers []models.Transfer
	Snapshot  Snapshot
}

// Detect builds the new snapshot from fetched and classifies the change
// relative to prev. A transfer counts as updated only when its status or
// updated-at timestamp moved; other field drift is ignored so that
// incidental backend formatting differences don't cause change storms.
func Detect(prev Snapshot, fetched []models.Transfer) ChangeResult {
	next := make(Snapshot, len(fetched))
	hasNew := false
	hasUpdated := false

	for _, t := range fetched {
		next[t.ID] = t
		old, seen := prev[t.ID]
		if !seen {
			hasNew = true
			continue
		}
		if old.Status != t.Status || !equalUpdatedAt(old.UpdatedAt, t.UpdatedAt) {
			hasUpdated = true
		}
	}

	return ChangeResult{
		Changed:   hasNew || hasUpdated,
		Transfers: fetched,
		Snapshot:  next,
	}
}

func equalUpdatedAt(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
