// Package testutil provides an in-memory database and reference fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"beo-inventory-backend/internal/db"
	"beo-inventory-backend/internal/model"
)

// NewSQLiteDB opens a private in-memory SQLite database with every table migrated.
// The pool is limited to one connection so transactions serialize the way row
// locks make them serialize on PostgreSQL.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to the in-memory database")

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// Fixtures is the reference data most lending tests need.
type Fixtures struct {
	Category    model.Category
	Main        model.Location
	Annex       model.Location
	Lodge       model.Lodge
	Member      model.Member
	Beneficiary model.Beneficiary
	Relative    model.Beneficiary
}

// Seed inserts one category, two locations, a lodge, a member and two beneficiaries.
func Seed(t *testing.T, gormDB *gorm.DB) Fixtures {
	t.Helper()

	f := Fixtures{
		Category: model.Category{Name: "Wheelchairs", Active: true},
		Main:     model.Location{Name: "Main Depot", Active: true},
		Annex:    model.Location{Name: "North Annex", Active: true},
		Lodge:    model.Lodge{Name: "Lodge Fraternity", Number: 12, Active: true},
	}
	require.NoError(t, gormDB.Create(&f.Category).Error)
	require.NoError(t, gormDB.Create(&f.Main).Error)
	require.NoError(t, gormDB.Create(&f.Annex).Error)
	require.NoError(t, gormDB.Create(&f.Lodge).Error)

	f.Member = model.Member{Name: "Carlos Pérez", LodgeID: f.Lodge.ID, Degree: "M:.M:.", Active: true}
	require.NoError(t, gormDB.Omit("Lodge").Create(&f.Member).Error)

	f.Beneficiary = model.Beneficiary{
		Kind:     model.BeneficiaryMember,
		MemberID: &f.Member.ID,
		Name:     f.Member.Name,
		Address:  "Calle 1 123",
	}
	require.NoError(t, gormDB.Omit("Member", "ResponsibleMember").Create(&f.Beneficiary).Error)

	f.Relative = model.Beneficiary{
		Kind:                model.BeneficiaryRelative,
		ResponsibleMemberID: &f.Member.ID,
		Relationship:        "mother",
		Name:                "Ana Pérez",
		Address:             "Calle 1 123",
	}
	require.NoError(t, gormDB.Omit("Member", "ResponsibleMember").Create(&f.Relative).Error)

	return f
}
