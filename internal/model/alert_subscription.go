package model

import "time"

// AlertSubscription holds an operator device's browser push subscription
// for integrity alerts.
type AlertSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Operator  string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
}

// All returns every model managed by migrations, in dependency order.
func All() []any {
	return []any{
		&Lodge{},
		&Member{},
		&Category{},
		&Location{},
		&Item{},
		&Beneficiary{},
		&Loan{},
		&StatusHistory{},
		&AlertSubscription{},
	}
}
