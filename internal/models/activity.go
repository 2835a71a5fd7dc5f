package models

import (
	"time"
)

const (
	ActionRidePublished         = "RIDE_PUBLISHED"
	ActionRidePublishedPublic   = "RIDE_PUBLISHED_PUBLIC"
	ActionRidePublishedGroup    = "RIDE_PUBLISHED_GROUP"
	ActionRidePublishedPersonal = "RIDE_PUBLISHED_PERSONAL"
	ActionRideClaimed           = "RIDE_CLAIMED"
	ActionRideCompleted         = "RIDE_COMPLETED"
	ActionRideCancelled         = "RIDE_CANCELLED"
	ActionRideDeleted           = "RIDE_DELETED"
	ActionRideCreated           = "RIDE_CREATED"
	ActionRideUpdated           = "RIDE_UPDATED"
	ActionPersonalRideAdded     = "PERSONAL_RIDE_ADDED"
	ActionGroupJoined           = "GROUP_JOINED"
	ActionQuoteSent             = "QUOTE_SENT"
)

type ActivityLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"type:varchar(128);not null;index"`
	ActionType  string    `json:"action_type" gorm:"type:varchar(64);not null;index"`
	Description string    `json:"description" gorm:"type:text;default:''"`
	RideID      *string   `json:"ride_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

// ActivityEntry - запись ленты, дополненная данными поездки
type ActivityEntry struct {
	ActivityLog
	PickupAddress  string         `json:"pickup_address,omitempty"`
	DropoffAddress string         `json:"dropoff_address,omitempty"`
	PriceCents     int64          `json:"price_cents,omitempty"`
	RideVisibility RideVisibility `json:"ride_visibility,omitempty"`
}

// ActivityDisplay - как запись выглядит в ленте
type ActivityDisplay struct {
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Badge    string `json:"badge,omitempty"`
}

type ActivityItem struct {
	ActivityEntry
	Display      ActivityDisplay `json:"display"`
	RelativeTime string          `json:"relative_time"`
}
