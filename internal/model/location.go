package model

import "time"

// Location is a storage site (depot) holding items.
type Location struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	Manager string `gorm:"size:255" json:"manager,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	// ItemCount is the stored stock counter, maintained by the lending engine
	// and cross-checked against the items table.
	ItemCount int64     `gorm:"not null;default:0" json:"itemCount"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
