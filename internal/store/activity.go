package store

import (
	"context"

	"corail-backend/internal/models"
)

// RecentActivity - последние действия пользователя с данными поездки.
// Поездка ищется сначала в rides, затем в personal_rides.
func (s *Store) RecentActivity(ctx context.Context, userID string, limit int) ([]models.ActivityEntry, error) {
	db := s.db.WithContext(ctx)

	var logs []models.ActivityLog
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}

	rideIDs := make([]string, 0, len(logs))
	for _, l := range logs {
		if l.RideID != nil {
			rideIDs = append(rideIDs, *l.RideID)
		}
	}

	rides := map[string]models.Ride{}
	personal := map[string]models.PersonalRide{}
	if len(rideIDs) > 0 {
		var found []models.Ride
		if err := db.Where("id IN ?", rideIDs).Find(&found).Error; err != nil {
			return nil, err
		}
		for _, r := range found {
			rides[r.ID] = r
		}

		var foundPersonal []models.PersonalRide
		if err := db.Where("id IN ?", rideIDs).Find(&foundPersonal).Error; err != nil {
			return nil, err
		}
		for _, r := range foundPersonal {
			personal[r.ID] = r
		}
	}

	entries := make([]models.ActivityEntry, 0, len(logs))
	for _, l := range logs {
		entry := models.ActivityEntry{ActivityLog: l}
		if l.RideID != nil {
			if r, ok := rides[*l.RideID]; ok {
				entry.PickupAddress = r.PickupAddress
				entry.DropoffAddress = r.DropoffAddress
				entry.PriceCents = r.PriceCents
				entry.RideVisibility = r.Visibility
			} else if p, ok := personal[*l.RideID]; ok {
				entry.PickupAddress = p.PickupAddress
				entry.DropoffAddress = p.DropoffAddress
				if p.PriceCents != nil {
					entry.PriceCents = *p.PriceCents
				}
				entry.RideVisibility = models.VisibilityPersonal
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CountActions - сколько раз пользователь совершил действия указанных типов
func (s *Store) CountActions(ctx context.Context, userID string, actionTypes ...string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("user_id = ? AND action_type IN ?", userID, actionTypes).
		Count(&count).Error
	return count, err
}
