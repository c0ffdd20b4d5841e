package store

import "beo-inventory-backend/internal/model"

// ItemFilter narrows ListItems. Zero values mean "any".
type ItemFilter struct {
	Status          model.ItemStatus
	LocationID      int64
	CategoryID      int64
	IncludeInactive bool
}

// ContactUpdate carries the beneficiary fields that may change after creation.
// Nil fields are left untouched.
type ContactUpdate struct {
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// CategoryCount is the number of active items in one category.
type CategoryCount struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalItems       int64           `json:"totalItems"`
	AvailableItems   int64           `json:"availableItems"`
	LoanedItems      int64           `json:"loanedItems"`
	MaintenanceItems int64           `json:"maintenanceItems"`
	ActiveLoans      int64           `json:"activeLoans"`
	OverdueLoans     int64           `json:"overdueLoans"`
	ActiveMembers    int64           `json:"activeMembers"`
	ItemsByCategory  []CategoryCount `json:"itemsByCategory"`
}
