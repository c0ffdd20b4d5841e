package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"beo-inventory-backend/internal/model"
)

// Store defines the read projections and registry writes over the entity tables.
// Item status is never written here; that is the lending engine's job.
type Store interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]model.Item, error)
	GetLoan(ctx context.Context, id string) (*model.Loan, error)
	ListActiveLoansByItem(ctx context.Context, itemID int64) ([]model.Loan, error)
	ListStatusHistory(ctx context.Context, itemID int64) ([]model.StatusHistory, error)
	ListLoansByBeneficiary(ctx context.Context, beneficiaryID int64) ([]model.Loan, error)
	ListLoansByMember(ctx context.Context, memberID int64) ([]model.Loan, error)
	ListOverdueLoans(ctx context.Context, now time.Time) ([]model.Loan, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)

	CreateLocation(ctx context.Context, loc *model.Location) error
	CreateCategory(ctx context.Context, cat *model.Category) error
	CreateLodge(ctx context.Context, lodge *model.Lodge) error
	CreateMember(ctx context.Context, member *model.Member) error
	CreateBeneficiary(ctx context.Context, b *model.Beneficiary) error
	UpdateBeneficiaryContact(ctx context.Context, id int64, update ContactUpdate) (*model.Beneficiary, error)

	SaveAlertSubscription(ctx context.Context, sub *model.AlertSubscription) error
	DeleteAlertSubscription(ctx context.Context, endpoint string) error
	ListAlertSubscriptions(ctx context.Context) ([]model.AlertSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB returns the underlying gorm handle.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notFound turns gorm.ErrRecordNotFound into model.ErrNotFound and wraps anything else.
func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", model.ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to load %s %v: %w", what, id, err)
}

// writeError maps constraint failures reported by the driver onto the sentinel errors.
func writeError(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", model.ErrConflict, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s references a missing row", model.ErrNotFound, what)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %s: %v", model.ErrInvalidInput, what, err)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

// exists reports whether a row of the model's table has the given primary key.
func exists(tx *gorm.DB, m any, id any) (bool, error) {
	var n int64
	if err := tx.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func mustExist(tx *gorm.DB, m any, what string, id any) error {
	ok, err := exists(tx, m, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s %v: %w", what, id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %v", model.ErrNotFound, what, id)
	}
	return nil
}
