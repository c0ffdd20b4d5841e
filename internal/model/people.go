package model

import "time"

// Lodge is the organizational unit members belong to.
type Lodge struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Number    int       `json:"number,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is a member of the organization; members request loans.
type Member struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	LodgeID   int64     `gorm:"index;not null" json:"lodgeId"`
	Degree    string    `gorm:"size:50" json:"degree,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`

	Lodge Lodge `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// BeneficiaryKind tells whether the beneficiary is a member or a relative of one.
type BeneficiaryKind string

const (
	BeneficiaryMember   BeneficiaryKind = "member"
	BeneficiaryRelative BeneficiaryKind = "relative"
)

// Beneficiary is the person who physically receives an item.
// Identity fields are fixed at creation; only contact details may change.
type Beneficiary struct {
	ID                  int64           `gorm:"primaryKey" json:"id"`
	Kind                BeneficiaryKind `gorm:"size:20;not null;check:chk_beneficiaries_kind,kind IN ('member','relative')" json:"kind"`
	MemberID            *int64          `gorm:"index" json:"memberId,omitempty"`
	ResponsibleMemberID *int64          `gorm:"index" json:"responsibleMemberId,omitempty"`
	Relationship        string          `gorm:"size:100" json:"relationship,omitempty"`
	Name                string          `gorm:"size:255;not null" json:"name"`
	Phone               string          `gorm:"size:50" json:"phone,omitempty"`
	Address             string          `gorm:"type:text;not null" json:"address"`
	Notes               string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`

	Member            *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:RESTRICT" json:"-"`
	ResponsibleMember *Member `gorm:"foreignKey:ResponsibleMemberID;constraint:OnDelete:RESTRICT" json:"-"`
}
