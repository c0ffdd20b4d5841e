// Package integrity detects and repairs divergences between item status,
// active loans, location counters and the status history.
package integrity

import (
	"sort"

	"beo-inventory-backend/internal/model"
)

// Category classifies a divergence.
type Category string

const (
	// OrphanedLoaned is an item marked loaned with no active loan.
	OrphanedLoaned Category = "orphaned-loaned"
	// DuplicateActiveLoan is an item with more than one active loan.
	DuplicateActiveLoan Category = "duplicate-active-loan"
	// MissingLoanedFlag is an item with exactly one active loan that is not marked loaned.
	MissingLoanedFlag Category = "missing-loaned-flag"
	// LocationCountDrift is a location whose stored counter disagrees with its items.
	LocationCountDrift Category = "location-count-drift"
	// HistoryMismatch is an item whose latest history entry does not end at its status.
	HistoryMismatch Category = "history-mismatch"
)

// rank orders categories in a report; status fixes come before history
// fixes so that the history repair sees the final status.
var rank = map[Category]int{
	OrphanedLoaned:      0,
	DuplicateActiveLoan: 1,
	MissingLoanedFlag:   2,
	LocationCountDrift:  3,
	HistoryMismatch:     4,
}

// Divergence is one detected mismatch.
//
// For status categories DetectedStatus is the stored item status and
// ExpectedStatus the one the loans imply. For HistoryMismatch DetectedStatus is
// the last recorded history status and ExpectedStatus the item's status.
// For LocationCountDrift DetectedCount is the stored counter and ExpectedCount
// the number of active items at the location.
type Divergence struct {
	Category       Category         `json:"category"`
	ItemID         int64            `json:"itemId,omitempty"`
	ItemCode       string           `json:"itemCode,omitempty"`
	LocationID     int64            `json:"locationId,omitempty"`
	DetectedStatus model.ItemStatus `json:"detectedStatus,omitempty"`
	ExpectedStatus model.ItemStatus `json:"expectedStatus,omitempty"`
	ActiveLoanIDs  []string         `json:"activeLoanIds,omitempty"`
	DetectedCount  int64            `json:"detectedCount,omitempty"`
	ExpectedCount  int64            `json:"expectedCount,omitempty"`
}

// Report is the result of CheckIntegrity. It carries no timestamps so that two
// checks over the same data compare equal.
type Report struct {
	Divergences []Divergence `json:"divergences"`
}

// Empty reports whether no divergence was found.
func (r *Report) Empty() bool {
	return len(r.Divergences) == 0
}

// Count returns the number of divergences of one category.
func (r *Report) Count(c Category) int {
	n := 0
	for _, d := range r.Divergences {
		if d.Category == c {
			n++
		}
	}
	return n
}

// Categories lists every category in report order.
func Categories() []Category {
	return []Category{OrphanedLoaned, DuplicateActiveLoan, MissingLoanedFlag, LocationCountDrift, HistoryMismatch}
}

func (r *Report) sort() {
	sort.SliceStable(r.Divergences, func(i, j int) bool {
		a, b := r.Divergences[i], r.Divergences[j]
		if rank[a.Category] != rank[b.Category] {
			return rank[a.Category] < rank[b.Category]
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.LocationID < b.LocationID
	})
}
