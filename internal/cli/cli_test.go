package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/lending"
	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/testutil"
)

func init() {
	color.NoColor = true
}

func testEnv(t *testing.T) (*Env, *gorm.DB) {
	t.Helper()
	gormDB := testutil.NewSQLiteDB(t)
	cfg := &config.Config{
		Lending: config.LendingConfig{
			DefaultLocation: "Main Depot",
			SeedCategories:  []string{"Wheelchairs", "Canes"},
		},
	}
	return &Env{Config: cfg, Open: func() (*gorm.DB, error) { return gormDB, nil }}, gormDB
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCmd_SeedsOnce(t *testing.T) {
	env, gormDB := testEnv(t)

	for i := 0; i < 2; i++ {
		out, err := run(t, MigrateCmd(env))
		require.NoError(t, err)
		assert.Contains(t, out, "schema is up to date")
	}

	var categories, locations int64
	require.NoError(t, gormDB.Model(&model.Category{}).Count(&categories).Error)
	require.NoError(t, gormDB.Model(&model.Location{}).Count(&locations).Error)
	assert.Equal(t, int64(2), categories)
	assert.Equal(t, int64(1), locations)
}

func TestCheckAndRepairCmd(t *testing.T) {
	env, gormDB := testEnv(t)
	f := testutil.Seed(t, gormDB)
	engine := lending.NewEngine(gormDB)
	item, err := engine.RegisterItem(context.Background(), lending.NewItem{
		Code: "BA-1", Name: "Cane", CategoryID: f.Category.ID, LocationID: f.Main.ID,
	}, "ana")
	require.NoError(t, err)
	require.NoError(t, gormDB.Model(&model.Item{}).Where("id = ?", item.ID).Update("status", model.ItemLoaned).Error)

	out, err := run(t, CheckCmd(env))
	require.NoError(t, err)
	assert.Contains(t, out, "FOUND 2 divergence(s)")
	assert.Contains(t, out, "orphaned-loaned")
	assert.Contains(t, out, "item BA-0001")

	_, err = run(t, CheckCmd(env), "--strict")
	assert.ErrorIs(t, err, ErrDivergences)

	out, err = run(t, CheckCmd(env), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "orphaned-loaned"`)

	_, err = run(t, RepairCmd(env))
	assert.Error(t, err, "operator is required")

	out, err = run(t, RepairCmd(env), "--operator", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "1 repaired, 1 skipped, 0 unresolvable, 0 failed")

	out, err = run(t, CheckCmd(env), "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "no divergences")
}

func TestHistoryCmd(t *testing.T) {
	env, gormDB := testEnv(t)
	f := testutil.Seed(t, gormDB)
	engine := lending.NewEngine(gormDB)
	item, err := engine.RegisterItem(context.Background(), lending.NewItem{
		Code: "SR-12", Name: "Wheelchair", CategoryID: f.Category.ID, LocationID: f.Main.ID,
	}, "ana")
	require.NoError(t, err)
	loanID, err := engine.RegisterLoan(context.Background(), lending.LoanRequest{
		ItemID: item.ID, BeneficiaryID: f.Beneficiary.ID, RequestingMemberID: f.Member.ID, DurationDays: 10, Operator: "ana",
	})
	require.NoError(t, err)

	out, err := run(t, HistoryCmd(env), fmt.Sprint(item.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "SR-0012 Wheelchair [loaned]")
	assert.Contains(t, out, "registration")
	assert.Contains(t, out, "loan "+loanID)

	_, err = run(t, HistoryCmd(env), "abc")
	assert.Error(t, err)

	_, err = run(t, HistoryCmd(env), "999")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOverdueCmd_Empty(t *testing.T) {
	env, _ := testEnv(t)
	out, err := run(t, OverdueCmd(env))
	require.NoError(t, err)
	assert.Contains(t, out, "no overdue loans")
}
