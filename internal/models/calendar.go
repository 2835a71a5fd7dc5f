package models

import (
	"time"
)

type EventType string

const (
	EventTypeRide        EventType = "RIDE"
	EventTypeBreak       EventType = "BREAK"
	EventTypeMaintenance EventType = "MAINTENANCE"
	EventTypePersonal    EventType = "PERSONAL"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeRide, EventTypeBreak, EventTypeMaintenance, EventTypePersonal:
		return true
	}
	return false
}

// CalendarEntry - самостоятельная запись календаря (перерыв, обслуживание, личное)
type CalendarEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"user_id" gorm:"type:varchar(128);not null;index"`
	EventType    EventType `json:"event_type" gorm:"type:varchar(20);not null"`
	StartTime    time.Time `json:"start_time" gorm:"not null;index"`
	EndTime      time.Time `json:"end_time" gorm:"not null"`
	StartAddress string    `json:"start_address,omitempty" gorm:"type:text;default:''"`
	EndAddress   string    `json:"end_address,omitempty" gorm:"type:text;default:''"`
	RideSource   string    `json:"ride_source,omitempty" gorm:"type:varchar(20);default:''"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'SCHEDULED'"`
	Notes        string    `json:"notes,omitempty" gorm:"type:text;default:''"`
	Color        string    `json:"color,omitempty" gorm:"type:varchar(16);default:''"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CalendarEntry) TableName() string {
	return "planning_events"
}
