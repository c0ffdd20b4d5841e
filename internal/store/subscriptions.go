package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"beo-inventory-backend/internal/model"
)

// SaveAlertSubscription creates or replaces the keys of a push endpoint.
func (s *gormStore) SaveAlertSubscription(ctx context.Context, sub *model.AlertSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "operator"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save alert subscription: %w", err)
	}
	return nil
}

// DeleteAlertSubscription removes a push endpoint. Unknown endpoints are ignored.
func (s *gormStore) DeleteAlertSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.AlertSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete alert subscription: %w", err)
	}
	return nil
}

// ListAlertSubscriptions returns every registered push endpoint.
func (s *gormStore) ListAlertSubscriptions(ctx context.Context) ([]model.AlertSubscription, error) {
	var subs []model.AlertSubscription
	if err := s.db.WithContext(ctx).Order("created_at").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert subscriptions: %w", err)
	}
	return subs, nil
}
