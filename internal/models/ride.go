package models

import (
	"time"
)

type RideStatus string

const (
	RideStatusPublished RideStatus = "PUBLISHED" // Опубликована на маркетплейсе
	RideStatusClaimed   RideStatus = "CLAIMED"   // Взята другим водителем
	RideStatusCompleted RideStatus = "COMPLETED" // Завершена
	RideStatusCancelled RideStatus = "CANCELLED" // Отменена
)

type RideVisibility string

const (
	VisibilityPublic   RideVisibility = "PUBLIC"   // Видна всем
	VisibilityGroup    RideVisibility = "GROUP"    // Только участникам группы
	VisibilityPersonal RideVisibility = "PERSONAL" // Только создателю
)

// IsMarketplace - поездка участвует в обмене кредитами
func (v RideVisibility) IsMarketplace() bool {
	return v == VisibilityPublic || v == VisibilityGroup
}

func (v RideVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityGroup, VisibilityPersonal:
		return true
	}
	return false
}

type VehicleType string

const (
	VehicleStandard VehicleType = "STANDARD"
	VehiclePremium  VehicleType = "PREMIUM"
	VehicleElectric VehicleType = "ELECTRIC"
	VehicleVan      VehicleType = "VAN"
	VehicleLuxury   VehicleType = "LUXURY"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleStandard, VehiclePremium, VehicleElectric, VehicleVan, VehicleLuxury:
		return true
	}
	return false
}

type Ride struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatorID          string         `json:"creator_id" gorm:"type:varchar(128);not null;index"`
	PickerID           *string        `json:"picker_id,omitempty" gorm:"type:varchar(128);index"`
	GroupID            *string        `json:"group_id,omitempty" gorm:"type:varchar(36);index"`
	PickupAddress      string         `json:"pickup_address" gorm:"type:text;not null"`
	DropoffAddress     string         `json:"dropoff_address" gorm:"type:text;not null"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty" gorm:"index"`
	PriceCents         int64          `json:"price_cents" gorm:"not null"`
	Status             RideStatus     `json:"status" gorm:"type:varchar(20);default:'PUBLISHED';index"`
	Visibility         RideVisibility `json:"visibility" gorm:"type:varchar(20);default:'PUBLIC'"`
	VehicleType        VehicleType    `json:"vehicle_type" gorm:"type:varchar(20);default:'STANDARD'"`
	DistanceKm         *float64       `json:"distance_km,omitempty"`
	DurationMinutes    *int           `json:"duration_minutes,omitempty"`
	CommissionEnabled  bool           `json:"commission_enabled"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty" gorm:"type:text;default:''"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Creator            *User          `json:"-" gorm:"foreignKey:CreatorID"`
	Picker             *User          `json:"-" gorm:"foreignKey:PickerID"`
}

type RideResponse struct {
	ID                 string         `json:"id"`
	CreatorID          string         `json:"creator_id"`
	PickerID           *string        `json:"picker_id,omitempty"`
	GroupID            *string        `json:"group_id,omitempty"`
	PickupAddress      string         `json:"pickup_address"`
	DropoffAddress     string         `json:"dropoff_address"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty"`
	PriceCents         int64          `json:"price_cents"`
	PriceLabel         string         `json:"price_label"`
	Status             RideStatus     `json:"status"`
	Visibility         RideVisibility `json:"visibility"`
	VehicleType        VehicleType    `json:"vehicle_type"`
	DistanceKm         *float64       `json:"distance_km,omitempty"`
	DurationMinutes    *int           `json:"duration_minutes,omitempty"`
	CommissionEnabled  bool           `json:"commission_enabled"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Creator            *UserSummary   `json:"creator,omitempty"`
	Picker             *UserSummary   `json:"picker,omitempty"`
}

// RidePage - страница маркетплейса
type RidePage struct {
	Data       []RideResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}
