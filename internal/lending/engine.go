// Package lending is the only code path that mutates item status. Every
// operation runs in one transaction that writes the status change and its
// history entry together.
package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/metrics"
	"beo-inventory-backend/internal/model"
)

// Engine applies the item state machine against the database.
type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new transition engine.
func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	e := &Engine{db: db, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// transition is a committed status change, reported to metrics after commit.
type transition struct {
	from, to model.ItemStatus
	reason   string
}

// run executes fn in a transaction and records the outcome.
func (e *Engine) run(ctx context.Context, op string, fn func(tx *gorm.DB) (*transition, error)) error {
	return e.execute(ctx, op, true, fn)
}

// runRepair is run for repair primitives: ErrNoop means the divergence is
// already gone and is not counted as a failure.
func (e *Engine) runRepair(ctx context.Context, op string, fn func(tx *gorm.DB) (*transition, error)) error {
	return e.execute(ctx, op, false, fn)
}

func (e *Engine) execute(ctx context.Context, op string, noopFails bool, fn func(tx *gorm.DB) (*transition, error)) error {
	var done *transition
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := fn(tx)
		done = t
		return err
	})
	if err != nil {
		err = translateTxError(err)
		if noopFails || !errors.Is(err, model.ErrNoop) {
			metrics.OperationFailures.WithLabelValues(op, metrics.ErrorKind(err)).Inc()
		}
		return err
	}
	if done != nil {
		metrics.Transitions.WithLabelValues(string(done.from), string(done.to), done.reason).Inc()
	}
	return nil
}

// translateTxError turns PostgreSQL deadlock (40P01) and serialization
// (40001) aborts into ErrConflict so callers know to retry.
func translateTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
		return fmt.Errorf("%w: transaction aborted by the database, retry: %w", model.ErrConflict, err)
	}
	return err
}

func requireOperator(operator string) error {
	if operator == "" {
		return fmt.Errorf("%w: operator is required", model.ErrInvalidInput)
	}
	return nil
}

// lockItem reads an item row FOR UPDATE so concurrent transitions on the same
// item serialize.
func lockItem(tx *gorm.DB, id int64) (*model.Item, error) {
	var item model.Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: item %d", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock item %d: %w", id, err)
	}
	return &item, nil
}

// setStatus moves an item from one status to another. The WHERE on the prior
// status makes a lost race visible as zero affected rows.
func setStatus(tx *gorm.DB, itemID int64, from, to model.ItemStatus, extra map[string]any) error {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&model.Item{}).
		Where("id = ? AND status = ?", itemID, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update item %d status: %w", itemID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: item %d is no longer %s", model.ErrConflict, itemID, from)
	}
	return nil
}

func (e *Engine) appendHistory(tx *gorm.DB, entry *model.StatusHistory) error {
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = e.now()
	}
	if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append status history for item %d: %w", entry.ItemID, err)
	}
	return nil
}

// adjustCount adds delta to a location's stored item counter.
func adjustCount(tx *gorm.DB, locationID int64, delta int) error {
	res := tx.Model(&model.Location{}).
		Where("id = ?", locationID).
		Update("item_count", gorm.Expr("item_count + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust item count of location %d: %w", locationID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: location %d", model.ErrNotFound, locationID)
	}
	return nil
}

// moveCount transfers one unit of stock between two locations. The rows are
// updated in ascending id order so opposite transfers never wait on each other
// in a cycle.
func moveCount(tx *gorm.DB, from, to int64) error {
	first, second := adjustment{from, -1}, adjustment{to, 1}
	if to < from {
		first, second = second, first
	}
	for _, a := range []adjustment{first, second} {
		if err := adjustCount(tx, a.locationID, a.delta); err != nil {
			return err
		}
	}
	return nil
}

type adjustment struct {
	locationID int64
	delta      int
}

func countActiveLoans(tx *gorm.DB, itemID int64) ([]string, error) {
	var ids []string
	if err := tx.Model(&model.Loan{}).
		Where("item_id = ? AND status = ?", itemID, model.LoanActive).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to count active loans of item %d: %w", itemID, err)
	}
	return ids, nil
}

func mustExist(tx *gorm.DB, m any, what string, id int64) error {
	var n int64
	if err := tx.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", model.ErrNotFound, what, id)
	}
	return nil
}
