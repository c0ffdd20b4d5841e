package lending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/parse"
)

// NewItem is the input of RegisterItem.
type NewItem struct {
	Code         string
	Name         string
	CategoryID   int64
	LocationID   int64
	Description  string
	Brand        string
	Model        string
	SerialNumber string
	IntakeDate   time.Time
	Notes        string
}

// ManualChange is the input of ManualStatusChange.
type ManualChange struct {
	ItemID    int64
	NewStatus model.ItemStatus
	Reason    string
	Notes     string
	Operator  string
}

// RegisterItem adds an available item to a location.
func (e *Engine) RegisterItem(ctx context.Context, in NewItem, operator string) (*model.Item, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	code, err := parse.ParseItemCode(in.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", model.ErrInvalidInput)
	}

	var item model.Item
	err = e.run(ctx, "register_item", func(tx *gorm.DB) (*transition, error) {
		if err := mustExist(tx, &model.Category{}, "category", in.CategoryID); err != nil {
			return nil, err
		}
		if err := mustExist(tx, &model.Location{}, "location", in.LocationID); err != nil {
			return nil, err
		}
		var taken int64
		if err := tx.Model(&model.Item{}).Where("code = ?", code.Canonical).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("failed to check item code %s: %w", code.Canonical, err)
		}
		if taken > 0 {
			return nil, fmt.Errorf("%w: item code %s already exists", model.ErrConflict, code.Canonical)
		}

		now := e.now()
		intake := in.IntakeDate
		if intake.IsZero() {
			intake = now
		}
		item = model.Item{
			Code:         code.Canonical,
			Name:         name,
			CategoryID:   in.CategoryID,
			LocationID:   in.LocationID,
			Status:       model.ItemAvailable,
			Description:  in.Description,
			Brand:        in.Brand,
			Model:        in.Model,
			SerialNumber: in.SerialNumber,
			IntakeDate:   intake,
			Notes:        in.Notes,
			Active:       true,
		}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: item code %s already exists", model.ErrConflict, code.Canonical)
			}
			return nil, fmt.Errorf("failed to create item %s: %w", code.Canonical, err)
		}
		if err := adjustCount(tx, item.LocationID, 1); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:    item.ID,
			NewStatus: model.ItemAvailable,
			Reason:    model.ReasonRegistration,
			Operator:  operator,
			ChangedAt: now,
		}); err != nil {
			return nil, err
		}
		return &transition{to: model.ItemAvailable, reason: model.ReasonRegistration}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Item %s registered at location %d by %s", item.Code, item.LocationID, operator)
	return &item, nil
}

// DeactivateItem retires an item without deleting it. A loaned item must be
// returned first.
func (e *Engine) DeactivateItem(ctx context.Context, itemID int64, reason, operator string) error {
	if err := requireOperator(operator); err != nil {
		return err
	}

	return e.run(ctx, "deactivate_item", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, itemID)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, fmt.Errorf("%w: item %d is already deactivated", model.ErrNoop, item.ID)
		}
		if item.Status == model.ItemLoaned {
			return nil, fmt.Errorf("%w: item %d is on loan", model.ErrConflict, item.ID)
		}

		res := tx.Model(&model.Item{}).
			Where("id = ? AND active = ? AND status = ?", item.ID, true, item.Status).
			Update("active", false)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to deactivate item %d: %w", item.ID, res.Error)
		}
		if res.RowsAffected != 1 {
			return nil, fmt.Errorf("%w: item %d changed concurrently", model.ErrConflict, item.ID)
		}
		if err := adjustCount(tx, item.LocationID, -1); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			PriorStatus: item.Status,
			NewStatus:   item.Status,
			Reason:      model.ReasonDeactivation,
			Notes:       strings.TrimSpace(reason),
			Operator:    operator,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// ManualStatusChange is the administrative override between available and
// maintenance. It never creates or closes loans, so loaned is neither a valid
// target nor a valid source.
func (e *Engine) ManualStatusChange(ctx context.Context, change ManualChange) error {
	if !change.NewStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, change.NewStatus)
	}
	if change.NewStatus == model.ItemLoaned {
		return fmt.Errorf("%w: use RegisterLoan to lend an item", model.ErrInvalidTransition)
	}
	if err := requireOperator(change.Operator); err != nil {
		return err
	}
	reason := strings.TrimSpace(change.Reason)
	if reason == "" {
		return fmt.Errorf("%w: reason is required", model.ErrInvalidInput)
	}

	return e.run(ctx, "manual_status_change", func(tx *gorm.DB) (*transition, error) {
		item, err := lockItem(tx, change.ItemID)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, fmt.Errorf("%w: item %d is deactivated", model.ErrInvalidTransition, item.ID)
		}
		if item.Status == change.NewStatus {
			return nil, fmt.Errorf("%w: item %d is already %s", model.ErrNoop, item.ID, item.Status)
		}
		if item.Status == model.ItemLoaned {
			return nil, fmt.Errorf("%w: item %d is on loan; return it instead", model.ErrInvalidTransition, item.ID)
		}

		if err := setStatus(tx, item.ID, item.Status, change.NewStatus, nil); err != nil {
			return nil, err
		}
		if err := e.appendHistory(tx, &model.StatusHistory{
			ItemID:      item.ID,
			PriorStatus: item.Status,
			NewStatus:   change.NewStatus,
			Reason:      reason,
			Notes:       strings.TrimSpace(change.Notes),
			Operator:    change.Operator,
		}); err != nil {
			return nil, err
		}
		log.Printf("Item %d manually moved %s -> %s by %s", item.ID, item.Status, change.NewStatus, change.Operator)
		return &transition{from: item.Status, to: change.NewStatus, reason: "manual"}, nil
	})
}
