package models

import (
	"time"
)

type RideSource string

const (
	SourceUber         RideSource = "UBER"
	SourceBolt         RideSource = "BOLT"
	SourceDirectClient RideSource = "DIRECT_CLIENT"
	SourceMarketplace  RideSource = "MARKETPLACE"
	SourceOther        RideSource = "OTHER"
)

func (s RideSource) Valid() bool {
	switch s {
	case SourceUber, SourceBolt, SourceDirectClient, SourceMarketplace, SourceOther:
		return true
	}
	return false
}

type PersonalRideStatus string

const (
	PersonalRideScheduled PersonalRideStatus = "SCHEDULED" // Запланирована
	PersonalRideCompleted PersonalRideStatus = "COMPLETED" // Выполнена
	PersonalRideCancelled PersonalRideStatus = "CANCELLED" // Отменена
)

// PersonalRide - запись в личном журнале водителя (Uber, Bolt, прямой клиент...)
type PersonalRide struct {
	ID              string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DriverID        string             `json:"driver_id" gorm:"type:varchar(128);not null;index"`
	Source          RideSource         `json:"source" gorm:"type:varchar(20);not null"`
	PickupAddress   string             `json:"pickup_address" gorm:"type:text;default:''"`
	DropoffAddress  string             `json:"dropoff_address" gorm:"type:text;default:''"`
	ScheduledAt     *time.Time         `json:"scheduled_at,omitempty"`
	PriceCents      *int64             `json:"price_cents,omitempty"`
	DistanceKm      *float64           `json:"distance_km,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	ClientName      string             `json:"client_name,omitempty" gorm:"type:varchar(255);default:''"`
	ClientPhone     string             `json:"client_phone,omitempty" gorm:"type:varchar(32);default:''"`
	Notes           string             `json:"notes,omitempty" gorm:"type:text;default:''"`
	Status          PersonalRideStatus `json:"status" gorm:"type:varchar(20);default:'COMPLETED';index"`
	CreatedAt       time.Time          `json:"created_at"`
}

// SourceStats - статистика по одному источнику
type SourceStats struct {
	Source          RideSource `json:"source"`
	TotalRides      int        `json:"total_rides"`
	CompletedRides  int        `json:"completed_rides"`
	RevenueEUR      float64    `json:"revenue_eur"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	AvgPriceEUR     float64    `json:"avg_price_eur"`
}

type PersonalRideTotals struct {
	TotalRides      int     `json:"total_rides"`
	CompletedRides  int     `json:"completed_rides"`
	TotalRevenueEUR float64 `json:"total_revenue_eur"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type PersonalRideStats struct {
	BySource []SourceStats     `json:"by_source"`
	Totals   PersonalRideTotals `json:"totals"`
}
