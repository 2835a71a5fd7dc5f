package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corail-backend/internal/models"
)

func (s *Store) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.db.WithContext(ctx).Order("id ASC").Find(&badges).Error
	return badges, err
}

// SeedBadges вставляет или обновляет каталог
func (s *Store) SeedBadges(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&badges).Error
	if err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	return nil
}

func (s *Store) UserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var records []models.UserBadge
	err := s.db.WithContext(ctx).Preload("Badge").Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

// EarnedBadges - заработанные значки, новые сначала
func (s *Store) EarnedBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var records []models.UserBadge
	err := s.db.WithContext(ctx).Preload("Badge").
		Where("user_id = ? AND earned_at IS NOT NULL", userID).
		Order("earned_at DESC").
		Find(&records).Error
	return records, err
}

// UpsertBadgeProgress обновляет прогресс. earned_at ставится условным UPDATE
// (earned_at IS NULL), поэтому из параллельных вызовов true вернет только один.
func (s *Store) UpsertBadgeProgress(ctx context.Context, userID string, badge models.Badge, count int) (bool, error) {
	progress := count
	if progress > badge.Threshold {
		progress = badge.Threshold
	}
	reached := badge.Threshold > 0 && count >= badge.Threshold

	awarded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.UserBadge{UserID: userID, BadgeID: badge.ID, Progress: progress}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&record).Error
		if err != nil {
			return err
		}

		byKey := func() *gorm.DB {
			return tx.Model(&models.UserBadge{}).Where("user_id = ? AND badge_id = ?", userID, badge.ID)
		}
		if err := byKey().Where("progress <> ?", progress).Update("progress", progress).Error; err != nil {
			return err
		}
		if !reached {
			return nil
		}
		res := byKey().Where("earned_at IS NULL").Update("earned_at", s.clock())
		if res.Error != nil {
			return res.Error
		}
		awarded = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return awarded, nil
}
