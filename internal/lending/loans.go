package lending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
)

// LoanRequest is the input of RegisterLoan.
type LoanRequest struct {
	ItemID             int64
	BeneficiaryID      int64
	RequestingMemberID int64
	DurationDays       int
	Notes              string
	Operator           string
}

// ReturnRequest is the input of ReturnLoan.
type ReturnRequest struct {
	LoanID           string
	ReturnLocationID int64
	Condition        model.ItemCondition
	Notes            string
	Operator         string
}

// RegisterLoan lends an available item and returns the new loan id.
func (e *Engine) RegisterLoan(ctx context.Context, req LoanRequest) (string, error) {
	if req.DurationDays <= 0 {
		return "", fmt.Errorf("%w: duration must be positive, got %d days", model.ErrInvalidInput, req.DurationDays)
	}
	if err := requireOperator(req.Operator); err != nil {
		return "", err
	}

	loanID := uuid.NewString()
	err := e.run(ctx, "register_loan", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, fmt.Errorf("%w: item %d is deactivated", model.ErrInvalidTransition, item.ID)
		}
		if item.Status != model.ItemAvailable {
			return nil, fmt.Errorf("%w: item %d is %s", model.ErrConflict, item.ID, item.Status)
		}
		if err := mustExist(tx, &model.Beneficiary{}, "beneficiary", req.BeneficiaryID); err != nil {
			return nil, err
		}
		if err := mustExist(tx, &model.Member{}, "member", req.RequestingMemberID); err != nil {
			return nil, err
		}
		active, err := countActiveLoans(tx, item.ID)
		if err != nil {
			return nil, err
		}
		if len(active) > 0 {
			return nil, fmt.Errorf("%w: item %d already has active loan %s", model.ErrConflict, item.ID, active[0])
		}

		now := e.now()
		loan := model.Loan{
			ID:                 loanID,
			ItemID:             item.ID,
			BeneficiaryID:      req.BeneficiaryID,
			RequestingMemberID: req.RequestingMemberID,
			LoanDate:           now,
			DurationDays:       req.DurationDays,
			ExpectedReturnDate: now.AddDate(0, 0, req.DurationDays),
			Status:             model.LoanActive,
			LoanNotes:          strings.TrimSpace(req.Notes),
			DeliveredBy:        req.Operator,
		}
		if err := tx.Omit(clause.Associations).Create(&loan).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: item %d already has an active loan", model.ErrConflict, item.ID)
			}
			return nil, fmt.Errorf("failed to create loan for item %d: %w", item.ID, err)
		}

		if err := setStatus(tx, item.ID, model.ItemAvailable, model.ItemLoaned, nil); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			LoanID:      &loan.ID,
			PriorStatus: model.ItemAvailable,
			NewStatus:   model.ItemLoaned,
			Reason:      model.ReasonLoan,
			Notes:       loan.LoanNotes,
			Operator:    req.Operator,
			ChangedAt:   now,
		}); err != nil {
			return nil, err
		}
		return &transition{from: model.ItemAvailable, to: model.ItemLoaned, reason: model.ReasonLoan}, nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("Loan %s registered for item %d by %s", loanID, req.ItemID, req.Operator)
	return loanID, nil
}

// ReturnLoan closes an active loan. The item moves to the return location and
// becomes available or goes to maintenance depending on its condition.
func (e *Engine) ReturnLoan(ctx context.Context, req ReturnRequest) error {
	next, ok := req.Condition.NextStatus()
	if !ok {
		return fmt.Errorf("%w: unknown condition %q", model.ErrInvalidInput, req.Condition)
	}
	if err := requireOperator(req.Operator); err != nil {
		return err
	}

	err := e.run(ctx, "return_loan", func(tx *gorm.DB) (*transition, error) {
		var loan model.Loan
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", req.LoanID).First(&loan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: loan %s", model.ErrNotFound, req.LoanID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock loan %s: %w", req.LoanID, err)
		}
		if loan.Status != model.LoanActive {
			return nil, fmt.Errorf("%w: loan %s", model.ErrAlreadyReturned, loan.ID)
		}
		if err := mustExist(tx, &model.Location{}, "location", req.ReturnLocationID); err != nil {
			return nil, err
		}

		item, err := lockItem(tx, loan.ItemID)
		if err != nil {
			return nil, err
		}
		if item.Status != model.ItemLoaned {
			return nil, fmt.Errorf("%w: loan %s is active but item %d is %s; run a repair first",
				model.ErrIntegrityViolation, loan.ID, item.ID, item.Status)
		}

		now := e.now()
		res := tx.Model(&model.Loan{}).
			Where("id = ? AND status = ?", loan.ID, model.LoanActive).
			Updates(map[string]any{
				"status":             model.LoanReturned,
				"actual_return_date": now,
				"return_location_id": req.ReturnLocationID,
				"return_condition":   req.Condition,
				"return_notes":       strings.TrimSpace(req.Notes),
				"received_by":        req.Operator,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to close loan %s: %w", loan.ID, res.Error)
		}
		if res.RowsAffected != 1 {
			return nil, fmt.Errorf("%w: loan %s", model.ErrAlreadyReturned, loan.ID)
		}

		if err := setStatus(tx, item.ID, model.ItemLoaned, next, map[string]any{"location_id": req.ReturnLocationID}); err != nil {
			return nil, err
		}
		if item.LocationID != req.ReturnLocationID && item.Active {
			if err := moveCount(tx, item.LocationID, req.ReturnLocationID); err != nil {
				return nil, err
			}
		}

		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			LoanID:      &loan.ID,
			PriorStatus: model.ItemLoaned,
			NewStatus:   next,
			Reason:      model.ReasonReturn,
			Notes:       strings.TrimSpace(req.Notes),
			Operator:    req.Operator,
			ChangedAt:   now,
		}); err != nil {
			return nil, err
		}
		return &transition{from: model.ItemLoaned, to: next, reason: model.ReasonReturn}, nil
	})
	if err != nil {
		return err
	}

	log.Printf("Loan %s returned (%s) by %s", req.LoanID, req.Condition, req.Operator)
	return nil
}
