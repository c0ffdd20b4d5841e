package lending

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
)

// The primitives below are used by the integrity repairer. Each one checks
// again, under lock, that the divergence it fixes still exists and returns
// model.ErrNoop when it does not.

// ForceLoaned marks an item loaned when exactly one active loan references it.
func (e *Engine) ForceLoaned(ctx context.Context, itemID int64, operator string) error {
	if err := requireOperator(operator); err != nil {
		return err
	}
	return e.runRepair(ctx, "force_loaned", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return nil, err
		}
		active, err := countActiveLoans(tx, item.ID)
		if err != nil {
			return nil, err
		}
		if item.Status == model.ItemLoaned || len(active) != 1 {
			return nil, fmt.Errorf("%w: item %d is %s with %d active loans", model.ErrNoop, item.ID, item.Status, len(active))
		}

		if err := setStatus(tx, item.ID, item.Status, model.ItemLoaned, nil); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			LoanID:      &active[0],
			PriorStatus: item.Status,
			NewStatus:   model.ItemLoaned,
			Reason:      model.ReasonAutoRepair,
			Notes:       fmt.Sprintf("active loan %s had no loaned flag", active[0]),
			Operator:    operator,
		}); err != nil {
			return nil, err
		}
		return &transition{from: item.Status, to: model.ItemLoaned, reason: model.ReasonAutoRepair}, nil
	})
}

// ForceAvailableOrphan releases a loaned item that no active loan references.
func (e *Engine) ForceAvailableOrphan(ctx context.Context, itemID int64, operator string) error {
	if err := requireOperator(operator); err != nil {
		return err
	}
	return e.runRepair(ctx, "force_available_orphan", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return nil, err
		}
		active, err := countActiveLoans(tx, item.ID)
		if err != nil {
			return nil, err
		}
		if item.Status != model.ItemLoaned || len(active) != 0 {
			return nil, fmt.Errorf("%w: item %d is %s with %d active loans", model.ErrNoop, item.ID, item.Status, len(active))
		}

		if err := setStatus(tx, item.ID, model.ItemLoaned, model.ItemAvailable, nil); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			PriorStatus: model.ItemLoaned,
			NewStatus:   model.ItemAvailable,
			Reason:      model.ReasonAutoRepairOrphan,
			Notes:       "loaned without an active loan",
			Operator:    operator,
		}); err != nil {
			return nil, err
		}
		return &transition{from: model.ItemLoaned, to: model.ItemAvailable, reason: model.ReasonAutoRepairOrphan}, nil
	})
}

// ReconcileHistory appends a history entry bringing the item's timeline up to
// its current status. The item status itself is not changed.
func (e *Engine) ReconcileHistory(ctx context.Context, itemID int64, operator string) error {
	if err := requireOperator(operator); err != nil {
		return err
	}
	return e.runRepair(ctx, "reconcile_history", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return nil, err
		}

		var last model.StatusHistory
		err = tx.Where("item_id = ?", item.ID).Order("changed_at DESC, id DESC").First(&last).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to read history of item %d: %w", item.ID, err)
		case last.NewStatus == item.Status:
			return nil, fmt.Errorf("%w: history of item %d already ends at %s", model.ErrNoop, item.ID, item.Status)
		}

		entry := &model.StatusHistory{
			ItemID:      item.ID,
			PriorStatus: last.NewStatus,
			NewStatus:   item.Status,
			Reason:      model.ReasonAutoRepairHistory,
			Notes:       "status changed without a history entry",
			Operator:    operator,
		}
		// keep the timeline monotonic when the clock is behind the last entry
		if now := e.now(); now.Before(last.ChangedAt) {
			entry.ChangedAt = last.ChangedAt
		}
		if err := e.appendHistory(tx, entry); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// CountChange is the outcome of ReconcileLocationCount.
type CountChange struct {
	LocationID int64
	From       int64
	To         int64
}

// ReconcileLocationCount resets a location's stored counter to the number of
// active items whose current location it is.
func (e *Engine) ReconcileLocationCount(ctx context.Context, locationID int64, operator string) (*CountChange, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}

	var change CountChange
	err := e.runRepair(ctx, "reconcile_location_count", func(tx *gorm.DB) (*transition, error) {
		var loc model.Location
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loc, locationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: location %d", model.ErrNotFound, locationID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock location %d: %w", locationID, err)
		}

		var actual int64
		if err := tx.Model(&model.Item{}).
			Where("location_id = ? AND active = ?", loc.ID, true).
			Count(&actual).Error; err != nil {
			return nil, fmt.Errorf("failed to count items of location %d: %w", loc.ID, err)
		}
		if actual == loc.ItemCount {
			return nil, fmt.Errorf("%w: location %d already counts %d items", model.ErrNoop, loc.ID, actual)
		}

		if err := tx.Model(&model.Location{}).Where("id = ?", loc.ID).Update("item_count", actual).Error; err != nil {
			return nil, fmt.Errorf("failed to reset item count of location %d: %w", loc.ID, err)
		}
		change = CountChange{LocationID: loc.ID, From: loc.ItemCount, To: actual}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}
