package models

import (
	"time"
)

type QuoteStatus string

const (
	QuotePending  QuoteStatus = "PENDING"  // Отправлен клиенту
	QuoteAccepted QuoteStatus = "ACCEPTED" // Принят клиентом
	QuoteDeclined QuoteStatus = "DECLINED" // Отклонен клиентом
)

// Quote - смета для прямого клиента, открывается по публичной ссылке
type Quote struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DriverID       string      `json:"driver_id" gorm:"type:varchar(128);not null;index"`
	Token          string      `json:"token" gorm:"type:varchar(64);uniqueIndex"`
	ClientName     string      `json:"client_name" gorm:"type:varchar(255);not null"`
	ClientPhone    string      `json:"client_phone" gorm:"type:varchar(32);not null"`
	PickupAddress  string      `json:"pickup_address" gorm:"type:text;not null"`
	DropoffAddress string      `json:"dropoff_address" gorm:"type:text;not null"`
	ScheduledDate  string      `json:"scheduled_date" gorm:"type:varchar(10)"`
	ScheduledTime  string      `json:"scheduled_time" gorm:"type:varchar(8)"`
	PriceCents     int64       `json:"price_cents" gorm:"not null"`
	Notes          string      `json:"notes,omitempty" gorm:"type:text;default:''"`
	Status         QuoteStatus `json:"status" gorm:"type:varchar(16);default:'PENDING'"`
	RespondedAt    *time.Time  `json:"responded_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

type QuoteResponse struct {
	Quote
	PriceLabel      string `json:"price_label"`
	QuoteURL        string `json:"quote_url"`
	WhatsAppMessage string `json:"whatsapp_message"`
	WhatsAppURL     string `json:"whatsapp_url"`
	WhatsAppSent    bool   `json:"whatsapp_sent"`
}

// PublicQuote - то, что видит клиент по ссылке
type PublicQuote struct {
	Token          string      `json:"token"`
	DriverName     string      `json:"driver_name"`
	DriverPhone    string      `json:"driver_phone"`
	PickupAddress  string      `json:"pickup_address"`
	DropoffAddress string      `json:"dropoff_address"`
	ScheduledDate  string      `json:"scheduled_date"`
	ScheduledTime  string      `json:"scheduled_time"`
	PriceCents     int64       `json:"price_cents"`
	PriceLabel     string      `json:"price_label"`
	Notes          string      `json:"notes,omitempty"`
	Status         QuoteStatus `json:"status"`
}
