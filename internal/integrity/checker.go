package integrity

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"beo-inventory-backend/internal/metrics"
	"beo-inventory-backend/internal/model"
)

// Checker compares item status against loans, location counters and history.
type Checker struct {
	db *gorm.DB
}

// NewChecker creates a new checker.
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

type itemRow struct {
	ID         int64
	Code       string
	Status     model.ItemStatus
	LocationID int64
}

type activeLoanRow struct {
	ID     string
	ItemID int64
}

type locationRow struct {
	ID        int64
	ItemCount int64
	Actual    int64
}

type historyRow struct {
	ID         int64
	Code       string
	Status     model.ItemStatus
	LocationID int64
	LastStatus *string
}

const latestHistorySQL = `
SELECT items.id, items.code, items.status, items.location_id, h.new_status AS last_status
FROM items
LEFT JOIN status_histories h ON h.id = (
	SELECT h2.id FROM status_histories h2
	WHERE h2.item_id = items.id
	ORDER BY h2.changed_at DESC, h2.id DESC
	LIMIT 1
)
WHERE h.id IS NULL OR h.new_status <> items.status
ORDER BY items.id`

// CheckIntegrity reads everything in one read-only transaction and returns
// the divergences found. It never writes.
func (c *Checker) CheckIntegrity(ctx context.Context) (*Report, error) {
	report := &Report{Divergences: []Divergence{}}

	var opts []*sql.TxOptions
	if c.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkLoans(tx, report); err != nil {
			return err
		}
		if err := checkLocations(tx, report); err != nil {
			return err
		}
		return checkHistory(tx, report)
	}, opts...)
	if err != nil {
		return nil, err
	}

	report.sort()
	for _, cat := range Categories() {
		metrics.Divergences.WithLabelValues(string(cat)).Set(float64(report.Count(cat)))
	}
	return report, nil
}

func checkLoans(tx *gorm.DB, report *Report) error {
	var loans []activeLoanRow
	if err := tx.Model(&model.Loan{}).
		Select("id, item_id").
		Where("status = ?", model.LoanActive).
		Order("item_id, id").
		Scan(&loans).Error; err != nil {
		return fmt.Errorf("failed to read active loans: %w", err)
	}
	byItem := make(map[int64][]string)
	for _, l := range loans {
		byItem[l.ItemID] = append(byItem[l.ItemID], l.ID)
	}

	withLoans := make([]int64, 0, len(byItem))
	for id := range byItem {
		withLoans = append(withLoans, id)
	}

	q := tx.Model(&model.Item{}).Select("id, code, status, location_id")
	if len(withLoans) > 0 {
		q = q.Where("status = ? OR id IN ?", model.ItemLoaned, withLoans)
	} else {
		q = q.Where("status = ?", model.ItemLoaned)
	}
	var items []itemRow
	if err := q.Order("id").Scan(&items).Error; err != nil {
		return fmt.Errorf("failed to read loaned items: %w", err)
	}

	for _, item := range items {
		active := byItem[item.ID]
		d := Divergence{
			ItemID:         item.ID,
			ItemCode:       item.Code,
			LocationID:     item.LocationID,
			DetectedStatus: item.Status,
			ActiveLoanIDs:  active,
		}
		switch {
		case len(active) > 1:
			d.Category = DuplicateActiveLoan
		case len(active) == 0 && item.Status == model.ItemLoaned:
			d.Category = OrphanedLoaned
			d.ExpectedStatus = model.ItemAvailable
		case len(active) == 1 && item.Status != model.ItemLoaned:
			d.Category = MissingLoanedFlag
			d.ExpectedStatus = model.ItemLoaned
		default:
			continue
		}
		report.Divergences = append(report.Divergences, d)
	}
	return nil
}

func checkLocations(tx *gorm.DB, report *Report) error {
	var rows []locationRow
	if err := tx.Table("locations").
		Select("locations.id, locations.item_count, COUNT(items.id) AS actual").
		Joins("LEFT JOIN items ON items.location_id = locations.id AND items.active = ?", true).
		Group("locations.id, locations.item_count").
		Order("locations.id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to count items per location: %w", err)
	}
	for _, r := range rows {
		if r.ItemCount == r.Actual {
			continue
		}
		report.Divergences = append(report.Divergences, Divergence{
			Category:      LocationCountDrift,
			LocationID:    r.ID,
			DetectedCount: r.ItemCount,
			ExpectedCount: r.Actual,
		})
	}
	return nil
}

func checkHistory(tx *gorm.DB, report *Report) error {
	var rows []historyRow
	if err := tx.Raw(latestHistorySQL).Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to compare status history: %w", err)
	}
	for _, r := range rows {
		d := Divergence{
			Category:       HistoryMismatch,
			ItemID:         r.ID,
			ItemCode:       r.Code,
			LocationID:     r.LocationID,
			ExpectedStatus: r.Status,
		}
		if r.LastStatus != nil {
			d.DetectedStatus = model.ItemStatus(*r.LastStatus)
		}
		report.Divergences = append(report.Divergences, d)
	}
	return nil
}
