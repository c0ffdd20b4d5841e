package model

import "time"

// Item is a physical orthopedic unit tracked by its unique code.
type Item struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"uniqueIndex;size:100;not null" json:"code"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	CategoryID   int64      `gorm:"index;not null" json:"categoryId"`
	LocationID   int64      `gorm:"index;not null" json:"locationId"`
	Status       ItemStatus `gorm:"size:20;not null;default:'available';check:chk_items_status,status IN ('available','loaned','maintenance')" json:"status"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Brand        string     `gorm:"size:255" json:"brand,omitempty"`
	Model        string     `gorm:"size:255" json:"model,omitempty"`
	SerialNumber string     `gorm:"size:255" json:"serialNumber,omitempty"`
	IntakeDate   time.Time  `gorm:"not null" json:"intakeDate"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Associations
	Category Category `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Location Location `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// Category groups items, e.g. wheelchairs or crutches.
type Category struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}
