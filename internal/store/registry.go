package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
)

// nameTaken reports whether a row of the model's table already uses name.
func nameTaken(tx *gorm.DB, m any, name string) (bool, error) {
	var n int64
	if err := tx.Model(m).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *gormStore) createNamed(ctx context.Context, row any, what, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: %s name is required", model.ErrInvalidInput, what)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, row, name)
		if err != nil {
			return fmt.Errorf("failed to check %s name: %w", what, err)
		}
		if taken {
			return fmt.Errorf("%w: %s %q already exists", model.ErrConflict, what, name)
		}
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return writeError(err, what)
		}
		return nil
	})
}

// CreateLocation registers a storage site. The stock counter always starts at zero.
func (s *gormStore) CreateLocation(ctx context.Context, loc *model.Location) error {
	loc.Name = strings.TrimSpace(loc.Name)
	loc.ItemCount = 0
	loc.Active = true
	return s.createNamed(ctx, loc, "location", loc.Name)
}

// CreateCategory registers an item category.
func (s *gormStore) CreateCategory(ctx context.Context, cat *model.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	cat.Active = true
	return s.createNamed(ctx, cat, "category", cat.Name)
}

// CreateLodge registers a lodge.
func (s *gormStore) CreateLodge(ctx context.Context, lodge *model.Lodge) error {
	lodge.Name = strings.TrimSpace(lodge.Name)
	lodge.Active = true
	return s.createNamed(ctx, lodge, "lodge", lodge.Name)
}

// CreateMember registers a member of an existing lodge.
func (s *gormStore) CreateMember(ctx context.Context, member *model.Member) error {
	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return fmt.Errorf("%w: member name is required", model.ErrInvalidInput)
	}
	member.Active = true

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &model.Lodge{}, "lodge", member.LodgeID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			return writeError(err, "member")
		}
		return nil
	})
}

// CreateBeneficiary registers a beneficiary. A member beneficiary points at
// the member itself; a relative points at the responsible member and carries
// the relationship.
func (s *gormStore) CreateBeneficiary(ctx context.Context, b *model.Beneficiary) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Address = strings.TrimSpace(b.Address)
	b.Relationship = strings.TrimSpace(b.Relationship)
	if b.Address == "" {
		return fmt.Errorf("%w: beneficiary address is required", model.ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch b.Kind {
		case model.BeneficiaryMember:
			if b.MemberID == nil {
				return fmt.Errorf("%w: member beneficiary needs memberId", model.ErrInvalidInput)
			}
			var member model.Member
			if err := tx.First(&member, *b.MemberID).Error; err != nil {
				return notFound(err, "member", *b.MemberID)
			}
			b.ResponsibleMemberID = nil
			b.Relationship = ""
			if b.Name == "" {
				b.Name = member.Name
			}
		case model.BeneficiaryRelative:
			if b.ResponsibleMemberID == nil {
				return fmt.Errorf("%w: relative beneficiary needs responsibleMemberId", model.ErrInvalidInput)
			}
			if b.Relationship == "" {
				return fmt.Errorf("%w: relative beneficiary needs a relationship", model.ErrInvalidInput)
			}
			if b.Name == "" {
				return fmt.Errorf("%w: beneficiary name is required", model.ErrInvalidInput)
			}
			if err := mustExist(tx, &model.Member{}, "member", *b.ResponsibleMemberID); err != nil {
				return err
			}
			b.MemberID = nil
		default:
			return fmt.Errorf("%w: unknown beneficiary kind %q", model.ErrInvalidInput, b.Kind)
		}

		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return writeError(err, "beneficiary")
		}
		return nil
	})
}

// UpdateBeneficiaryContact changes phone, address or notes. Identity fields
// (kind, member links, name, relationship) cannot be changed.
func (s *gormStore) UpdateBeneficiaryContact(ctx context.Context, id int64, update ContactUpdate) (*model.Beneficiary, error) {
	changes := map[string]any{}
	if update.Phone != nil {
		changes["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.Address != nil {
		addr := strings.TrimSpace(*update.Address)
		if addr == "" {
			return nil, fmt.Errorf("%w: beneficiary address cannot be empty", model.ErrInvalidInput)
		}
		changes["address"] = addr
	}
	if update.Notes != nil {
		changes["notes"] = *update.Notes
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no contact fields to update", model.ErrInvalidInput)
	}

	var b model.Beneficiary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			return notFound(err, "beneficiary", id)
		}
		if err := tx.Model(&b).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update beneficiary %d: %w", id, err)
		}
		return tx.First(&b, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}
