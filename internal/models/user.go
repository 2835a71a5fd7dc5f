package models

import (
	"time"
)

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED" // Документы не отправлены
	VerificationPending    VerificationStatus = "PENDING"    // На модерации
	VerificationVerified   VerificationStatus = "VERIFIED"   // Проверен
	VerificationRejected   VerificationStatus = "REJECTED"   // Отказ
)

// User - водитель; ID совпадает с uid из Firebase
type User struct {
	ID                      string             `json:"id" gorm:"primaryKey;type:varchar(128)"`
	Email                   string             `json:"email" gorm:"type:varchar(255);default:''"`
	FullName                string             `json:"full_name" gorm:"type:varchar(255);default:''"`
	Phone                   string             `json:"phone" gorm:"type:varchar(32);default:''"`
	AvatarURL               string             `json:"avatar_url" gorm:"type:text;default:''"`
	IsAdmin                 bool               `json:"is_admin" gorm:"default:false"`
	VerificationStatus      VerificationStatus `json:"verification_status" gorm:"type:varchar(20);default:'UNVERIFIED';index"`
	ProfessionalCardNumber  string             `json:"professional_card_number" gorm:"type:varchar(64);default:''"`
	Siren                   string             `json:"siren" gorm:"type:varchar(9);default:''"`
	VerificationSubmittedAt *time.Time         `json:"verification_submitted_at,omitempty"`
	VerifiedAt              *time.Time         `json:"verified_at,omitempty"`
	RejectionReason         string             `json:"rejection_reason,omitempty" gorm:"type:text;default:''"`
	Rating                  float64            `json:"rating" gorm:"default:0"`
	TotalReviews            int                `json:"total_reviews" gorm:"default:0"`
	FCMToken                string             `json:"-" gorm:"column:fcm_token;type:text;default:''"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// UserSummary - краткая информация о водителе, встраиваемая в ответы по поездкам
type UserSummary struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == "" {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        u.Phone,
		Rating:       u.Rating,
		TotalReviews: u.TotalReviews,
	}
}

func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}

// PendingVerification - заявка на проверку для панели администратора
type PendingVerification struct {
	ID                      string     `json:"id"`
	Email                   string     `json:"email"`
	FullName                string     `json:"full_name"`
	Phone                   string     `json:"phone"`
	ProfessionalCardNumber  string     `json:"professional_card_number"`
	Siren                   string     `json:"siren"`
	VerificationSubmittedAt *time.Time `json:"verification_submitted_at"`
}

// WithoutContacts - копия без email и телефона, для рассылок другим водителям
func (s *UserSummary) WithoutContacts() *UserSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.Email = ""
	c.Phone = ""
	return &c
}
