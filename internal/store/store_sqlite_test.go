package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/testutil"
)

func createItem(t *testing.T, gormDB *gorm.DB, f testutil.Fixtures, code string, status model.ItemStatus) model.Item {
	t.Helper()
	item := model.Item{
		Code:       code,
		Name:       "Wheelchair " + code,
		CategoryID: f.Category.ID,
		LocationID: f.Main.ID,
		Status:     status,
		IntakeDate: time.Now(),
		Active:     true,
	}
	require.NoError(t, gormDB.Omit(clause.Associations).Create(&item).Error)
	return item
}

func createLoan(t *testing.T, gormDB *gorm.DB, itemID, beneficiaryID, memberID int64, loanDate time.Time, status model.LoanStatus) model.Loan {
	t.Helper()
	loan := model.Loan{
		ID:                 uuid.NewString(),
		ItemID:             itemID,
		BeneficiaryID:      beneficiaryID,
		RequestingMemberID: memberID,
		LoanDate:           loanDate,
		DurationDays:       30,
		ExpectedReturnDate: loanDate.AddDate(0, 0, 30),
		Status:             status,
		DeliveredBy:        "tester",
	}
	require.NoError(t, gormDB.Omit(clause.Associations).Create(&loan).Error)
	return loan
}

func TestStore_ListItems_Filters(t *testing.T) {
	gormDB := testutil.NewSQLiteDB(t)
	f := testutil.Seed(t, gormDB)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	createItem(t, gormDB, f, "SR-0002", model.ItemAvailable)
	createItem(t, gormDB, f, "SR-0001", model.ItemMaintenance)
	retired := createItem(t, gormDB, f, "SR-0003", model.ItemAvailable)
	require.NoError(t, gormDB.Model(&retired).Update("active", false).Error)

	items, err := s.ListItems(ctx, ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SR-0001", items[0].Code)
	assert.Equal(t, "SR-0002", items[1].Code)

	items, err = s.ListItems(ctx, ItemFilter{Status: model.ItemAvailable, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = s.ListItems(ctx, ItemFilter{LocationID: f.Annex.ID})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_ListStatusHistory_ReplayOrder(t *testing.T) {
	gormDB := testutil.NewSQLiteDB(t)
	f := testutil.Seed(t, gormDB)
	s := NewGormStore(gormDB)
	item := createItem(t, gormDB, f, "SR-0001", model.ItemMaintenance)

	t0 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.StatusHistory{
		{ItemID: item.ID, PriorStatus: model.ItemAvailable, NewStatus: model.ItemMaintenance, Reason: "inspection", Operator: "ana", ChangedAt: t0.Add(time.Hour)},
		{ItemID: item.ID, NewStatus: model.ItemAvailable, Reason: model.ReasonRegistration, Operator: "ana", ChangedAt: t0},
	}
	require.NoError(t, gormDB.Omit(clause.Associations).Create(&entries).Error)

	history, err := s.ListStatusHistory(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ReasonRegistration, history[0].Reason)
	assert.Equal(t, model.ItemMaintenance, history[1].NewStatus)

	_, err = s.ListStatusHistory(context.Background(), 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_LoanProjections(t *testing.T) {
	gormDB := testutil.NewSQLiteDB(t)
	f := testutil.Seed(t, gormDB)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	other := model.Member{Name: "Luis Gómez", LodgeID: f.Lodge.ID, Active: true}
	require.NoError(t, gormDB.Omit(clause.Associations).Create(&other).Error)

	first := createItem(t, gormDB, f, "SR-0001", model.ItemAvailable)
	second := createItem(t, gormDB, f, "SR-0002", model.ItemLoaned)
	third := createItem(t, gormDB, f, "SR-0003", model.ItemLoaned)

	t0 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	returned := createLoan(t, gormDB, first.ID, f.Beneficiary.ID, f.Member.ID, t0, model.LoanReturned)
	active := createLoan(t, gormDB, second.ID, f.Beneficiary.ID, f.Member.ID, t0.AddDate(0, 0, 5), model.LoanActive)
	// Requested by another member for the relative our member is responsible for.
	relative := createLoan(t, gormDB, third.ID, f.Relative.ID, other.ID, t0.AddDate(0, 0, 1), model.LoanActive)

	t.Run("GetLoan", func(t *testing.T) {
		loan, err := s.GetLoan(ctx, active.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, loan.ItemID)

		_, err = s.GetLoan(ctx, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("ListActiveLoansByItem", func(t *testing.T) {
		loans, err := s.ListActiveLoansByItem(ctx, first.ID)
		require.NoError(t, err)
		assert.Empty(t, loans)

		loans, err = s.ListActiveLoansByItem(ctx, second.ID)
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, active.ID, loans[0].ID)
	})

	t.Run("ListLoansByBeneficiary newest first", func(t *testing.T) {
		loans, err := s.ListLoansByBeneficiary(ctx, f.Beneficiary.ID)
		require.NoError(t, err)
		require.Len(t, loans, 2)
		assert.Equal(t, active.ID, loans[0].ID)
		assert.Equal(t, returned.ID, loans[1].ID)

		_, err = s.ListLoansByBeneficiary(ctx, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("ListLoansByMember includes relatives", func(t *testing.T) {
		loans, err := s.ListLoansByMember(ctx, f.Member.ID)
		require.NoError(t, err)
		ids := make([]string, 0, len(loans))
		for _, l := range loans {
			ids = append(ids, l.ID)
		}
		assert.ElementsMatch(t, []string{returned.ID, active.ID, relative.ID}, ids)

		loans, err = s.ListLoansByMember(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, relative.ID, loans[0].ID)
	})

	t.Run("ListOverdueLoans and Stats", func(t *testing.T) {
		now := t0.AddDate(0, 0, 33)
		overdue, err := s.ListOverdueLoans(ctx, now)
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, relative.ID, overdue[0].ID)

		stats, err := s.Stats(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalItems)
		assert.Equal(t, int64(1), stats.AvailableItems)
		assert.Equal(t, int64(2), stats.LoanedItems)
		assert.Equal(t, int64(2), stats.ActiveLoans)
		assert.Equal(t, int64(1), stats.OverdueLoans)
		assert.Equal(t, int64(2), stats.ActiveMembers)
		require.Len(t, stats.ItemsByCategory, 1)
		assert.Equal(t, int64(3), stats.ItemsByCategory[0].Count)
	})
}

func TestStore_Registry(t *testing.T) {
	gormDB := testutil.NewSQLiteDB(t)
	f := testutil.Seed(t, gormDB)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	t.Run("Location names are unique and counters start at zero", func(t *testing.T) {
		loc := &model.Location{Name: "South Depot", ItemCount: 40}
		require.NoError(t, s.CreateLocation(ctx, loc))
		assert.NotZero(t, loc.ID)
		assert.Zero(t, loc.ItemCount)

		err := s.CreateLocation(ctx, &model.Location{Name: "South Depot"})
		assert.ErrorIs(t, err, model.ErrConflict)

		err = s.CreateLocation(ctx, &model.Location{Name: "   "})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("Category and lodge", func(t *testing.T) {
		require.NoError(t, s.CreateCategory(ctx, &model.Category{Name: "Canes"}))
		assert.ErrorIs(t, s.CreateCategory(ctx, &model.Category{Name: "Wheelchairs"}), model.ErrConflict)
		require.NoError(t, s.CreateLodge(ctx, &model.Lodge{Name: "Lodge Light", Number: 4}))
	})

	t.Run("Member needs an existing lodge", func(t *testing.T) {
		err := s.CreateMember(ctx, &model.Member{Name: "Pedro", LodgeID: 999})
		assert.ErrorIs(t, err, model.ErrNotFound)

		m := &model.Member{Name: "Pedro", LodgeID: f.Lodge.ID}
		require.NoError(t, s.CreateMember(ctx, m))
		assert.True(t, m.Active)
	})

	t.Run("Beneficiary kinds", func(t *testing.T) {
		self := &model.Beneficiary{Kind: model.BeneficiaryMember, MemberID: &f.Member.ID, Address: "Calle 2"}
		require.NoError(t, s.CreateBeneficiary(ctx, self))
		assert.Equal(t, f.Member.Name, self.Name)

		missing := int64(999)
		err := s.CreateBeneficiary(ctx, &model.Beneficiary{Kind: model.BeneficiaryMember, MemberID: &missing, Address: "x"})
		assert.ErrorIs(t, err, model.ErrNotFound)

		err = s.CreateBeneficiary(ctx, &model.Beneficiary{Kind: model.BeneficiaryRelative, ResponsibleMemberID: &f.Member.ID, Name: "Rosa", Address: "x"})
		assert.ErrorIs(t, err, model.ErrInvalidInput, "relationship is required")

		err = s.CreateBeneficiary(ctx, &model.Beneficiary{Kind: "friend", Name: "Rosa", Address: "x"})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("UpdateBeneficiaryContact keeps identity", func(t *testing.T) {
		phone := "+54 11 5555"
		b, err := s.UpdateBeneficiaryContact(ctx, f.Relative.ID, ContactUpdate{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, b.Phone)
		assert.Equal(t, "Ana Pérez", b.Name)
		assert.Equal(t, "mother", b.Relationship)
		assert.Equal(t, "Calle 1 123", b.Address)

		empty := " "
		_, err = s.UpdateBeneficiaryContact(ctx, f.Relative.ID, ContactUpdate{Address: &empty})
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = s.UpdateBeneficiaryContact(ctx, 999, ContactUpdate{Phone: &phone})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestStore_AlertSubscriptions(t *testing.T) {
	gormDB := testutil.NewSQLiteDB(t)
	s := NewGormStore(gormDB)
	ctx := context.Background()

	sub := &model.AlertSubscription{Endpoint: "https://push.example/1", P256DH: "k1", Auth: "a1"}
	require.NoError(t, s.SaveAlertSubscription(ctx, sub))
	require.NoError(t, s.SaveAlertSubscription(ctx, &model.AlertSubscription{Endpoint: "https://push.example/1", P256DH: "k2", Auth: "a2"}))

	subs, err := s.ListAlertSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256DH)

	require.NoError(t, s.DeleteAlertSubscription(ctx, "https://push.example/1"))
	subs, err = s.ListAlertSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
