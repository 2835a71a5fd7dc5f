package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corail-backend/internal/models"
)

// Identity - данные из токена при первом входе
type Identity struct {
	UID      string
	Email    string
	FullName string
	Phone    string
	IsAdmin  bool
}

// GetOrCreateUser возвращает пользователя, создавая его при первом обращении.
// Второй параметр - true, если запись создана сейчас.
func (s *Store) GetOrCreateUser(ctx context.Context, id Identity) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id.UID).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		ID:                 id.UID,
		Email:              id.Email,
		FullName:           id.FullName,
		Phone:              id.Phone,
		IsAdmin:            id.IsAdmin,
		VerificationStatus: models.VerificationUnverified,
	}
	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
		if res.Error != nil {
			return res.Error
		}
		// Параллельный запрос уже создал пользователя
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		if s.welcomeBonus > 0 {
			return addCredit(tx, user.ID, s.welcomeBonus, models.CreditWelcomeBonus, nil, "Bonus de bienvenue")
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	if !created {
		if err := s.db.WithContext(ctx).First(&user, "id = ?", id.UID).Error; err != nil {
			return nil, false, err
		}
	}
	return &user, created, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ProfileUpdate - изменяемые поля профиля; nil - без изменений
type ProfileUpdate struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if upd.FullName != nil {
		updates["full_name"] = *upd.FullName
	}
	if upd.Phone != nil {
		updates["phone"] = *upd.Phone
	}
	if upd.AvatarURL != nil {
		updates["avatar_url"] = *upd.AvatarURL
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetUser(ctx, userID)
}

// PushRecipientIDs - пользователи с зарегистрированным устройством, кроме exceptID
func (s *Store) PushRecipientIDs(ctx context.Context, exceptID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("fcm_token <> '' AND id <> ?", exceptID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *Store) UpdateFCMToken(ctx context.Context, userID, token string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UsersWithTokens возвращает пользователей с FCM токеном из списка
func (s *Store) UsersWithTokens(ctx context.Context, userIDs []string) ([]models.User, error) {
	var users []models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := s.db.WithContext(ctx).
		Where("id IN ? AND fcm_token <> ''", userIDs).
		Find(&users).Error
	return users, err
}

// VerificationInput - данные заявки на верификацию
type VerificationInput struct {
	FullName               string
	Phone                  string
	ProfessionalCardNumber string
	Siren                  string
}

// SubmitVerification переводит пользователя в PENDING.
// Уже проверенный пользователь повторно заявку не подает.
func (s *Store) SubmitVerification(ctx context.Context, userID string, in VerificationInput) (*models.User, error) {
	now := s.clock()
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_status <> ?", userID, models.VerificationVerified).
		Updates(map[string]interface{}{
			"full_name":                 in.FullName,
			"phone":                     in.Phone,
			"professional_card_number":  in.ProfessionalCardNumber,
			"siren":                     in.Siren,
			"verification_status":       models.VerificationPending,
			"verification_submitted_at": now,
			"rejection_reason":          "",
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		user, err := s.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user.IsVerified() {
			return nil, ErrAlreadyReviewed
		}
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

func (s *Store) ListPendingVerifications(ctx context.Context) ([]models.PendingVerification, error) {
	var pending []models.PendingVerification
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id, email, full_name, phone, professional_card_number, siren, verification_submitted_at").
		Where("verification_status = ?", models.VerificationPending).
		Order("verification_submitted_at ASC").
		Scan(&pending).Error
	return pending, err
}

// ReviewVerification - решение администратора. Условное обновление по PENDING
// гарантирует, что второе решение по той же заявке получит ErrAlreadyReviewed.
func (s *Store) ReviewVerification(ctx context.Context, userID string, status models.VerificationStatus, reason string) (*models.User, error) {
	updates := map[string]interface{}{
		"verification_status": status,
		"rejection_reason":    reason,
	}
	if status == models.VerificationVerified {
		updates["verified_at"] = s.clock()
		updates["rejection_reason"] = ""
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_status = ?", userID, models.VerificationPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUser(ctx, userID); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}
	return s.GetUser(ctx, userID)
}
