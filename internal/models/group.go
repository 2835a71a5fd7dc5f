package models

import (
	"time"
)

type GroupRole string

const (
	GroupRoleOwner  GroupRole = "OWNER"
	GroupRoleMember GroupRole = "MEMBER"
)

type Group struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(128);not null"`
	Description string    `json:"description" gorm:"type:text;default:''"`
	OwnerID     string    `json:"owner_id" gorm:"type:varchar(128);not null;index"`
	InviteCode  string    `json:"invite_code" gorm:"type:varchar(16);uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
}

type GroupMember struct {
	GroupID  string    `json:"group_id" gorm:"primaryKey;type:varchar(36)"`
	UserID   string    `json:"user_id" gorm:"primaryKey;type:varchar(128)"`
	Role     GroupRole `json:"role" gorm:"type:varchar(16);default:'MEMBER'"`
	JoinedAt time.Time `json:"joined_at"`
	User     *User     `json:"-" gorm:"foreignKey:UserID"`
}

type GroupSummary struct {
	Group
	MemberCount int64 `json:"member_count"`
}

type GroupMemberView struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupDetail struct {
	Group
	Members []GroupMemberView `json:"members"`
	Rides   []RideResponse    `json:"rides"`
}
