package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"corail-backend/internal/models"
)

const (
	FilterAll         = "all"
	FilterPublic      = "public"
	FilterGroups      = "groups"
	FilterMyPublished = "my_published"

	MineClaimed   = "claimed"
	MinePublished = "published"
)

// Page - skip/limit маркетплейса
type Page struct {
	Skip  int
	Limit int
}

func (s *Store) withParties(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Creator").Preload("Picker")
}

func (s *Store) myGroupIDs(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
}

// ListMarketplace - открытые и взятые поездки, ближайшие сначала
func (s *Store) ListMarketplace(ctx context.Context, userID, filter string, page Page) ([]models.Ride, int64, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Ride{}).
		Where("status IN ?", []models.RideStatus{models.RideStatusPublished, models.RideStatusClaimed})

	switch filter {
	case FilterPublic:
		q = q.Where("visibility = ?", models.VisibilityPublic)
	case FilterGroups:
		q = q.Where("visibility = ? AND group_id IN (?)", models.VisibilityGroup, s.myGroupIDs(db, userID))
	case FilterMyPublished:
		q = q.Where("creator_id = ? AND visibility <> ?", userID, models.VisibilityPersonal)
	default:
		q = q.Where("(visibility = ? OR (visibility = ? AND group_id IN (?)))",
			models.VisibilityPublic, models.VisibilityGroup, s.myGroupIDs(db, userID))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count marketplace: %w", err)
	}

	var rides []models.Ride
	err := s.withParties(q).
		Order("scheduled_at ASC").
		Order("created_at ASC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&rides).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list marketplace: %w", err)
	}
	return rides, total, nil
}

// ListMyRides: claimed - взятые мной, published - созданные мной (включая личные)
func (s *Store) ListMyRides(ctx context.Context, userID, kind string) ([]models.Ride, error) {
	q := s.withParties(s.db.WithContext(ctx))
	if kind == MineClaimed {
		q = q.Where("picker_id = ?", userID)
	} else {
		q = q.Where("creator_id = ?", userID)
	}

	var rides []models.Ride
	if err := q.Order("scheduled_at DESC").Order("created_at DESC").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

// ClaimedRidesBetween - взятые поездки водителя для календаря
func (s *Store) ClaimedRidesBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("picker_id = ? AND status IN ? AND scheduled_at >= ? AND scheduled_at < ?",
			userID, []models.RideStatus{models.RideStatusClaimed, models.RideStatusCompleted}, from, to).
		Order("scheduled_at ASC").
		Find(&rides).Error
	return rides, err
}

// GetRide - поездка видна создателю, исполнителю и тем, кому видна на маркетплейсе
func (s *Store) GetRide(ctx context.Context, userID, rideID string) (*models.Ride, error) {
	db := s.db.WithContext(ctx)
	var ride models.Ride
	if err := s.withParties(db).First(&ride, "id = ?", rideID).Error; err != nil {
		return nil, notFound(err)
	}

	if ride.CreatorID == userID || (ride.PickerID != nil && *ride.PickerID == userID) {
		return &ride, nil
	}
	switch ride.Visibility {
	case models.VisibilityPublic:
		return &ride, nil
	case models.VisibilityGroup:
		ok, err := s.isMember(db, deref(ride.GroupID), userID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &ride, nil
		}
	}
	return nil, ErrForbidden
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateRide сохраняет поездку и начисляет кредит за публикацию в одной транзакции
func (s *Store) CreateRide(ctx context.Context, creatorID string, ride *models.Ride) (*models.Ride, error) {
	ride.ID = uuid.NewString()
	ride.CreatorID = creatorID
	ride.Status = models.RideStatusPublished
	ride.PickerID = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ride.Visibility == models.VisibilityGroup {
			ok, err := s.isMember(tx, deref(ride.GroupID), creatorID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrForbidden
			}
		}

		if err := tx.Create(ride).Error; err != nil {
			return fmt.Errorf("insert ride: %w", err)
		}

		switch ride.Visibility {
		case models.VisibilityPersonal:
			return logActivity(tx, creatorID, models.ActionRidePublishedPersonal, "Course personnelle créée", &ride.ID)
		case models.VisibilityGroup:
			if err := addCredit(tx, creatorID, 1, models.CreditPublishRide, &ride.ID, "Publication d'une course"); err != nil {
				return err
			}
			return logActivity(tx, creatorID, models.ActionRidePublishedGroup, "Course publiée dans un groupe", &ride.ID)
		default:
			if err := addCredit(tx, creatorID, 1, models.CreditPublishRide, &ride.ID, "Publication d'une course"); err != nil {
				return err
			}
			return logActivity(tx, creatorID, models.ActionRidePublishedPublic, "Course publiée sur la marketplace", &ride.ID)
		}
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, ride.ID)
}

// ClaimRide - взять поездку: списание кредита и смена статуса атомарно.
// Условный UPDATE по status=PUBLISHED не дает двум водителям взять одну поездку.
func (s *Store) ClaimRide(ctx context.Context, userID, rideID string) (*models.Ride, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := tx.First(&ride, "id = ?", rideID).Error; err != nil {
			return notFound(err)
		}
		if ride.CreatorID == userID {
			return ErrOwnRide
		}
		switch ride.Visibility {
		case models.VisibilityPersonal:
			return ErrForbidden
		case models.VisibilityGroup:
			ok, err := s.isMember(tx, deref(ride.GroupID), userID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrForbidden
			}
		}
		if ride.Status != models.RideStatusPublished {
			return ErrRideNotAvailable
		}

		if err := lockUser(tx, userID); err != nil {
			return err
		}
		credits, err := balance(tx, userID)
		if err != nil {
			return err
		}
		if credits < 1 {
			return ErrInsufficientCredits
		}

		res := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideID, models.RideStatusPublished).
			Updates(map[string]interface{}{
				"status":    models.RideStatusClaimed,
				"picker_id": userID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRideNotAvailable
		}

		if err := addCredit(tx, userID, -1, models.CreditClaimRide, &ride.ID, "Course réclamée"); err != nil {
			return err
		}
		return logActivity(tx, userID, models.ActionRideClaimed, "Course prise", &ride.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, rideID)
}

// CompleteRide: личную поездку завершает создатель, поездку маркетплейса - исполнитель (+1 кредит)
func (s *Store) CompleteRide(ctx context.Context, userID, rideID string) (*models.Ride, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := tx.First(&ride, "id = ?", rideID).Error; err != nil {
			return notFound(err)
		}

		from := models.RideStatusClaimed
		if ride.Visibility == models.VisibilityPersonal {
			if ride.CreatorID != userID {
				return ErrForbidden
			}
			from = models.RideStatusPublished
		} else if ride.PickerID == nil || *ride.PickerID != userID {
			return ErrForbidden
		}
		if ride.Status != from {
			return ErrInvalidTransition
		}

		res := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideID, from).
			Updates(map[string]interface{}{
				"status":       models.RideStatusCompleted,
				"completed_at": s.clock(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		if ride.Visibility.IsMarketplace() {
			if err := addCredit(tx, userID, 1, models.CreditCompleteBonus, &ride.ID, "Bonus course terminée"); err != nil {
				return err
			}
		}
		return logActivity(tx, userID, models.ActionRideCompleted, "Course terminée", &ride.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, rideID)
}

// CancelRide - отмена создателем; если поездку уже взяли, исполнителю возвращается кредит
func (s *Store) CancelRide(ctx context.Context, userID, rideID, reason string) (*models.Ride, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := tx.First(&ride, "id = ?", rideID).Error; err != nil {
			return notFound(err)
		}
		if ride.CreatorID != userID {
			return ErrForbidden
		}
		if ride.Status != models.RideStatusPublished && ride.Status != models.RideStatusClaimed {
			return ErrInvalidTransition
		}

		res := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideID, ride.Status).
			Updates(map[string]interface{}{
				"status":              models.RideStatusCancelled,
				"cancelled_at":        s.clock(),
				"cancellation_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		if ride.Status == models.RideStatusClaimed && ride.PickerID != nil {
			if err := addCredit(tx, *ride.PickerID, 1, models.CreditRefund, &ride.ID, "Remboursement course annulée"); err != nil {
				return err
			}
		}
		return logActivity(tx, userID, models.ActionRideCancelled, "Course annulée", &ride.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, rideID)
}

// DeleteRide удаляет опубликованную или отмененную поездку создателя.
// Возвращает удаленную запись, чтобы вызывающий мог оповестить участников.
func (s *Store) DeleteRide(ctx context.Context, userID, rideID string) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ride, "id = ?", rideID).Error; err != nil {
			return notFound(err)
		}
		if ride.CreatorID != userID {
			return ErrForbidden
		}
		if ride.Status != models.RideStatusPublished && ride.Status != models.RideStatusCancelled {
			return ErrInvalidTransition
		}

		res := tx.Where("id = ? AND status = ?", rideID, ride.Status).Delete(&models.Ride{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		// Лента ссылается на удаленную поездку без ride_id
		return logActivity(tx, userID, models.ActionRideDeleted, "Course supprimée", nil)
	})
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (s *Store) reload(ctx context.Context, rideID string) (*models.Ride, error) {
	var ride models.Ride
	if err := s.withParties(s.db.WithContext(ctx)).First(&ride, "id = ?", rideID).Error; err != nil {
		return nil, notFound(err)
	}
	return &ride, nil
}

// RidesScheduledBetween - поездки с исполнителем в окне [from, to), для напоминаний
func (s *Store) RidesScheduledBetween(ctx context.Context, status models.RideStatus, from, to time.Time) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("status = ? AND picker_id IS NOT NULL AND scheduled_at >= ? AND scheduled_at < ?", status, from, to).
		Find(&rides).Error
	return rides, err
}
