package model

import "time"

// StatusHistory is the append-only audit trail of item status transitions.
// Replaying rows ordered by (ChangedAt, ID) reconstructs an item's timeline.
type StatusHistory struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	ItemID      int64      `gorm:"index:idx_status_histories_item_changed,priority:1;not null" json:"itemId"`
	LoanID      *string    `gorm:"type:varchar(36);index" json:"loanId,omitempty"`
	PriorStatus ItemStatus `gorm:"size:20" json:"priorStatus,omitempty"`
	NewStatus   ItemStatus `gorm:"size:20;not null" json:"newStatus"`
	Reason      string     `gorm:"size:100;not null" json:"reason"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	Operator    string     `gorm:"size:255;not null" json:"operator"`
	ChangedAt   time.Time  `gorm:"index:idx_status_histories_item_changed,priority:2;not null" json:"changedAt"`

	Item Item `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}
