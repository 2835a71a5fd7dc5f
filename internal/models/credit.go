package models

import (
	"time"
)

type CreditTransactionType string

const (
	CreditPublishRide   CreditTransactionType = "PUBLISH_RIDE"          // +1 за публикацию
	CreditClaimRide     CreditTransactionType = "CLAIM_RIDE"            // -1 за взятую поездку
	CreditCompleteBonus CreditTransactionType = "COMPLETE_RIDE_BONUS"   // +1 за завершение
	CreditRefund        CreditTransactionType = "REFUND_CANCELLED_RIDE" // возврат при отмене
	CreditWelcomeBonus  CreditTransactionType = "WELCOME_BONUS"         // стартовый бонус
)

// CreditTransaction - запись журнала кредитов; баланс = SUM(amount)
type CreditTransaction struct {
	ID              string                `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string                `json:"user_id" gorm:"type:varchar(128);not null;index"`
	Amount          int                   `json:"amount" gorm:"not null"`
	TransactionType CreditTransactionType `json:"transaction_type" gorm:"type:varchar(32);not null"`
	RideID          *string               `json:"ride_id,omitempty" gorm:"type:varchar(36)"`
	Description     string                `json:"description" gorm:"type:text;default:''"`
	CreatedAt       time.Time             `json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credits_ledger"
}
