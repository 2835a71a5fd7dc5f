package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"corail-backend/internal/models"
)

// ListPersonalRides - журнал водителя, новые сначала; пустой status - все
func (s *Store) ListPersonalRides(ctx context.Context, driverID string, status models.PersonalRideStatus, limit int) ([]models.PersonalRide, error) {
	q := s.db.WithContext(ctx).Where("driver_id = ?", driverID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rides []models.PersonalRide
	if err := q.Order("created_at DESC").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

// ScheduledPersonalRidesBetween - запланированные личные поездки в окне
func (s *Store) ScheduledPersonalRidesBetween(ctx context.Context, driverID string, from, to time.Time) ([]models.PersonalRide, error) {
	q := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?", models.PersonalRideScheduled, from, to)
	if driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	var rides []models.PersonalRide
	err := q.Order("scheduled_at ASC").Find(&rides).Error
	return rides, err
}

func (s *Store) CreatePersonalRide(ctx context.Context, driverID string, ride *models.PersonalRide) (*models.PersonalRide, error) {
	ride.ID = uuid.NewString()
	ride.DriverID = driverID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ride).Error; err != nil {
			return fmt.Errorf("insert personal ride: %w", err)
		}
		return logActivity(tx, driverID, models.ActionPersonalRideAdded,
			fmt.Sprintf("Course %s ajoutée", ride.Source), &ride.ID)
	})
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// PersonalRideStats - статистика по источникам. Выручка учитывает все поездки с ценой,
// средняя цена делится на общее число поездок источника.
func (s *Store) PersonalRideStats(ctx context.Context, driverID string) (*models.PersonalRideStats, error) {
	var rides []models.PersonalRide
	if err := s.db.WithContext(ctx).Where("driver_id = ?", driverID).Find(&rides).Error; err != nil {
		return nil, err
	}

	bySource := map[models.RideSource]*models.SourceStats{}
	stats := &models.PersonalRideStats{BySource: []models.SourceStats{}}

	for _, r := range rides {
		src, ok := bySource[r.Source]
		if !ok {
			src = &models.SourceStats{Source: r.Source}
			bySource[r.Source] = src
		}
		src.TotalRides++
		stats.Totals.TotalRides++
		if r.Status == models.PersonalRideCompleted {
			src.CompletedRides++
			stats.Totals.CompletedRides++
		}
		if r.PriceCents != nil {
			eur := float64(*r.PriceCents) / 100
			src.RevenueEUR += eur
			stats.Totals.TotalRevenueEUR += eur
		}
		if r.DistanceKm != nil {
			src.TotalDistanceKm += *r.DistanceKm
			stats.Totals.TotalDistanceKm += *r.DistanceKm
		}
	}

	for _, src := range bySource {
		if src.TotalRides > 0 {
			src.AvgPriceEUR = src.RevenueEUR / float64(src.TotalRides)
		}
		stats.BySource = append(stats.BySource, *src)
	}
	sort.Slice(stats.BySource, func(i, j int) bool {
		return stats.BySource[i].Source < stats.BySource[j].Source
	})
	return stats, nil
}
