package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"corail-backend/internal/models"
)

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewInviteCode - случайный код из 8 символов без похожих букв и цифр
func NewInviteCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

func (s *Store) isMember(tx *gorm.DB, groupID, userID string) (bool, error) {
	if groupID == "" {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return s.isMember(s.db.WithContext(ctx), groupID, userID)
}

// GroupMemberIDs - участники группы, кроме exceptID
func (s *Store) GroupMemberIDs(ctx context.Context, groupID, exceptID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id <> ?", groupID, exceptID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListGroups - группы пользователя с числом участников
func (s *Store) ListGroups(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	db := s.db.WithContext(ctx)
	var groups []models.Group
	err := db.Where("id IN (?)", s.myGroupIDs(db, userID)).Order("created_at DESC").Find(&groups).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.GroupSummary, 0, len(groups))
	for _, g := range groups {
		var count int64
		if err := db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, models.GroupSummary{Group: g, MemberCount: count})
	}
	return summaries, nil
}

// CreateGroup - создатель становится владельцем
func (s *Store) CreateGroup(ctx context.Context, ownerID, name, description string) (*models.Group, error) {
	code, err := NewInviteCode()
	if err != nil {
		return nil, fmt.Errorf("invite code: %w", err)
	}
	group := &models.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		InviteCode:  code,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		member := models.GroupMember{GroupID: group.ID, UserID: ownerID, Role: models.GroupRoleOwner, JoinedAt: s.clock()}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroup - группа с участниками и открытыми поездками; только для участников
func (s *Store) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, []models.GroupMember, []models.Ride, error) {
	db := s.db.WithContext(ctx)
	var group models.Group
	if err := db.First(&group, "id = ?", groupID).Error; err != nil {
		return nil, nil, nil, notFound(err)
	}
	ok, err := s.isMember(db, groupID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ok {
		return nil, nil, nil, ErrForbidden
	}

	var members []models.GroupMember
	if err := db.Preload("User").Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members).Error; err != nil {
		return nil, nil, nil, err
	}

	var rides []models.Ride
	err = s.withParties(db).
		Where("group_id = ? AND visibility = ? AND status = ?", groupID, models.VisibilityGroup, models.RideStatusPublished).
		Order("scheduled_at ASC").
		Find(&rides).Error
	if err != nil {
		return nil, nil, nil, err
	}
	return &group, members, rides, nil
}

// JoinGroup - вступление по коду приглашения
func (s *Store) JoinGroup(ctx context.Context, userID, inviteCode string) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code := strings.ToUpper(strings.TrimSpace(inviteCode))
		if err := tx.First(&group, "invite_code = ?", code).Error; err != nil {
			return notFound(err)
		}
		ok, err := s.isMember(tx, group.ID, userID)
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyMember
		}
		member := models.GroupMember{GroupID: group.ID, UserID: userID, Role: models.GroupRoleMember, JoinedAt: s.clock()}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return logActivity(tx, userID, models.ActionGroupJoined, "Groupe "+group.Name+" rejoint", nil)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// LeaveGroup - владелец покинуть группу не может
func (s *Store) LeaveGroup(ctx context.Context, userID, groupID string) error {
	var member models.GroupMember
	err := s.db.WithContext(ctx).First(&member, "group_id = ? AND user_id = ?", groupID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if member.Role == models.GroupRoleOwner {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}
