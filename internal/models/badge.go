package models

import (
	"time"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "COMMON"
	RarityRare      BadgeRarity = "RARE"
	RarityEpic      BadgeRarity = "EPIC"
	RarityLegendary BadgeRarity = "LEGENDARY"
)

// RarityOrder - порядок вывода групп на экране значков
var RarityOrder = []BadgeRarity{RarityLegendary, RarityEpic, RarityRare, RarityCommon}

type Badge struct {
	ID                     string      `json:"id" yaml:"id" gorm:"primaryKey;type:varchar(64)"`
	Name                   string      `json:"name" yaml:"name" gorm:"type:varchar(128);not null"`
	Description            string      `json:"description" yaml:"description" gorm:"type:text"`
	Icon                   string      `json:"icon" yaml:"icon" gorm:"type:varchar(64)"`
	Color                  string      `json:"color" yaml:"color" gorm:"type:varchar(16)"`
	Rarity                 BadgeRarity `json:"rarity" yaml:"rarity" gorm:"type:varchar(16)"`
	Category               string      `json:"category" yaml:"category" gorm:"type:varchar(32)"`
	RequirementDescription string      `json:"requirement_description,omitempty" yaml:"requirement_description" gorm:"type:text"`
	ActionType             string      `json:"action_type" yaml:"action_type" gorm:"type:varchar(64);index"`
	Threshold              int         `json:"threshold" yaml:"threshold" gorm:"not null;default:1"`
}

type UserBadge struct {
	UserID    string     `json:"user_id" gorm:"primaryKey;type:varchar(128)"`
	BadgeID   string     `json:"badge_id" gorm:"primaryKey;type:varchar(64)"`
	Progress  int        `json:"progress" gorm:"default:0"`
	EarnedAt  *time.Time `json:"earned_at,omitempty" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`
	Badge     *Badge     `json:"-" gorm:"foreignKey:BadgeID"`
}

// EarnedBadge - плоский формат заработанного значка
type EarnedBadge struct {
	BadgeID          string      `json:"badge_id"`
	BadgeName        string      `json:"badge_name"`
	BadgeDescription string      `json:"badge_description"`
	BadgeIcon        string      `json:"badge_icon"`
	BadgeColor       string      `json:"badge_color"`
	BadgeRarity      BadgeRarity `json:"badge_rarity"`
	EarnedAt         time.Time   `json:"earned_at"`
}

// BadgeView - значок каталога вместе с прогрессом пользователя
type BadgeView struct {
	Badge
	RarityLabel string     `json:"rarity_label"`
	RarityColor string     `json:"rarity_color"`
	Progress    int        `json:"progress"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

type BadgeGroup struct {
	Rarity BadgeRarity `json:"rarity"`
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Badges []BadgeView `json:"badges"`
}

type BadgeCollection struct {
	EarnedCount          int          `json:"earned_count"`
	TotalCount           int          `json:"total_count"`
	CompletionPercentage int          `json:"completion_percentage"`
	Groups               []BadgeGroup `json:"groups"`
}
