package store

import (
	"context"
	"fmt"
	"time"

	"beo-inventory-backend/internal/model"
)

// GetItem returns one item by id, inactive items included.
func (s *gormStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err, "item", id)
	}
	return &item, nil
}

// ListItems returns items ordered by code.
func (s *gormStore) ListItems(ctx context.Context, filter ItemFilter) ([]model.Item, error) {
	q := s.db.WithContext(ctx).Model(&model.Item{})
	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.LocationID != 0 {
		q = q.Where("location_id = ?", filter.LocationID)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var items []model.Item
	if err := q.Order("code").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetLoan returns one loan by id.
func (s *gormStore) GetLoan(ctx context.Context, id string) (*model.Loan, error) {
	var loan model.Loan
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error; err != nil {
		return nil, notFound(err, "loan", id)
	}
	return &loan, nil
}

// ListActiveLoansByItem returns the active loans of an item. More than one
// element means the single-active-loan invariant is broken.
func (s *gormStore) ListActiveLoansByItem(ctx context.Context, itemID int64) ([]model.Loan, error) {
	tx := s.db.WithContext(ctx)
	if err := mustExist(tx, &model.Item{}, "item", itemID); err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := tx.Where("item_id = ? AND status = ?", itemID, model.LoanActive).
		Order("loan_date, id").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list active loans for item %d: %w", itemID, err)
	}
	return loans, nil
}

// ListStatusHistory returns an item's timeline in replay order.
func (s *gormStore) ListStatusHistory(ctx context.Context, itemID int64) ([]model.StatusHistory, error) {
	tx := s.db.WithContext(ctx)
	if err := mustExist(tx, &model.Item{}, "item", itemID); err != nil {
		return nil, err
	}

	var entries []model.StatusHistory
	if err := tx.Where("item_id = ?", itemID).
		Order("changed_at, id").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list status history for item %d: %w", itemID, err)
	}
	return entries, nil
}

// ListLoansByBeneficiary returns every loan received by a beneficiary, newest first.
func (s *gormStore) ListLoansByBeneficiary(ctx context.Context, beneficiaryID int64) ([]model.Loan, error) {
	tx := s.db.WithContext(ctx)
	if err := mustExist(tx, &model.Beneficiary{}, "beneficiary", beneficiaryID); err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := tx.Where("beneficiary_id = ?", beneficiaryID).
		Order("loan_date DESC, id").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans for beneficiary %d: %w", beneficiaryID, err)
	}
	return loans, nil
}

// ListLoansByMember returns the loans a member requested, received, or is
// responsible for through a relative, newest first.
func (s *gormStore) ListLoansByMember(ctx context.Context, memberID int64) ([]model.Loan, error) {
	tx := s.db.WithContext(ctx)
	if err := mustExist(tx, &model.Member{}, "member", memberID); err != nil {
		return nil, err
	}

	related := tx.Model(&model.Beneficiary{}).
		Select("id").
		Where("member_id = ? OR responsible_member_id = ?", memberID, memberID)

	var loans []model.Loan
	if err := tx.Where("requesting_member_id = ? OR beneficiary_id IN (?)", memberID, related).
		Order("loan_date DESC, id").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans for member %d: %w", memberID, err)
	}
	return loans, nil
}

// ListOverdueLoans returns active loans whose expected return date is before now.
func (s *gormStore) ListOverdueLoans(ctx context.Context, now time.Time) ([]model.Loan, error) {
	var loans []model.Loan
	if err := s.db.WithContext(ctx).
		Where("status = ? AND expected_return_date < ?", model.LoanActive, now).
		Order("expected_return_date, id").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list overdue loans: %w", err)
	}
	return loans, nil
}

type statusCount struct {
	Status model.ItemStatus
	Count  int64
}

// Stats computes the dashboard counters over active items and loans.
func (s *gormStore) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	tx := s.db.WithContext(ctx)
	stats := &Stats{ItemsByCategory: []CategoryCount{}}

	var byStatus []statusCount
	if err := tx.Model(&model.Item{}).
		Select("status, COUNT(*) AS count").
		Where("active = ?", true).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count items by status: %w", err)
	}
	for _, sc := range byStatus {
		stats.TotalItems += sc.Count
		switch sc.Status {
		case model.ItemAvailable:
			stats.AvailableItems = sc.Count
		case model.ItemLoaned:
			stats.LoanedItems = sc.Count
		case model.ItemMaintenance:
			stats.MaintenanceItems = sc.Count
		}
	}

	if err := tx.Model(&model.Loan{}).
		Where("status = ?", model.LoanActive).
		Count(&stats.ActiveLoans).Error; err != nil {
		return nil, fmt.Errorf("failed to count active loans: %w", err)
	}
	if err := tx.Model(&model.Loan{}).
		Where("status = ? AND expected_return_date < ?", model.LoanActive, now).
		Count(&stats.OverdueLoans).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	if err := tx.Model(&model.Member{}).
		Where("active = ?", true).
		Count(&stats.ActiveMembers).Error; err != nil {
		return nil, fmt.Errorf("failed to count active members: %w", err)
	}

	if err := tx.Table("categories").
		Select("categories.id AS category_id, categories.name AS name, COUNT(items.id) AS count").
		Joins("LEFT JOIN items ON items.category_id = categories.id AND items.active = ?", true).
		Where("categories.active = ?", true).
		Group("categories.id, categories.name").
		Order("categories.name").
		Scan(&stats.ItemsByCategory).Error; err != nil {
		return nil, fmt.Errorf("failed to count items by category: %w", err)
	}
	return stats, nil
}
