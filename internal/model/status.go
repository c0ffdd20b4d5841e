package model

// ItemStatus is the lending state of an item.
type ItemStatus string

const (
	ItemAvailable   ItemStatus = "available"
	ItemLoaned      ItemStatus = "loaned"
	ItemMaintenance ItemStatus = "maintenance"
)

// Valid reports whether s is one of the enumerated item statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemAvailable, ItemLoaned, ItemMaintenance:
		return true
	}
	return false
}

// LoanStatus is the state of a single lending event.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// ItemCondition is what the operator observed when an item came back.
type ItemCondition string

const (
	ConditionGood             ItemCondition = "good"
	ConditionFair             ItemCondition = "fair"
	ConditionDamaged          ItemCondition = "damaged"
	ConditionNeedsMaintenance ItemCondition = "needs_maintenance"
)

// NextStatus maps a return condition to the status the item takes after the return.
func (c ItemCondition) NextStatus() (ItemStatus, bool) {
	switch c {
	case ConditionGood, ConditionFair:
		return ItemAvailable, true
	case ConditionDamaged, ConditionNeedsMaintenance:
		return ItemMaintenance, true
	}
	return "", false
}

// History reasons written by the lending engine.
const (
	ReasonRegistration      = "registration"
	ReasonLoan              = "loan"
	ReasonReturn            = "return"
	ReasonDeactivation      = "deactivation"
	ReasonAutoRepair        = "auto-repair"
	ReasonAutoRepairOrphan  = "auto-repair-orphan"
	ReasonAutoRepairHistory = "auto-repair-history"
)
