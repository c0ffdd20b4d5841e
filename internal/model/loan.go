package model

import "time"

// Loan is one lending event of an item to a beneficiary.
type Loan struct {
	ID                 string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	ItemID             int64         `gorm:"index;not null" json:"itemId"`
	BeneficiaryID      int64         `gorm:"index;not null" json:"beneficiaryId"`
	RequestingMemberID int64         `gorm:"index;not null" json:"requestingMemberId"`
	LoanDate           time.Time     `gorm:"not null" json:"loanDate"`
	DurationDays       int           `gorm:"not null" json:"durationDays"`
	ExpectedReturnDate time.Time     `gorm:"index;not null" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time    `json:"actualReturnDate,omitempty"`
	Status             LoanStatus    `gorm:"size:20;index;not null;default:'active';check:chk_loans_status,status IN ('active','returned')" json:"status"`
	ReturnLocationID   *int64        `gorm:"index" json:"returnLocationId,omitempty"`
	ReturnCondition    ItemCondition `gorm:"size:30" json:"returnCondition,omitempty"`
	LoanNotes          string        `gorm:"type:text" json:"loanNotes,omitempty"`
	ReturnNotes        string        `gorm:"type:text" json:"returnNotes,omitempty"`
	DeliveredBy        string        `gorm:"size:255;not null" json:"deliveredBy"`
	ReceivedBy         string        `gorm:"size:255" json:"receivedBy,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`

	// Associations
	Item             Item        `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Beneficiary      Beneficiary `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	RequestingMember Member      `gorm:"foreignKey:RequestingMemberID;constraint:OnDelete:RESTRICT" json:"-"`
	ReturnLocation   *Location   `gorm:"foreignKey:ReturnLocationID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Overdue reports whether an active loan has passed its expected return date.
func (l Loan) Overdue(now time.Time) bool {
	return l.Status == LoanActive && now.After(l.ExpectedReturnDate)
}
