package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"corail-backend/internal/models"
)

// Preferences - настройки уведомлений пользователя (хранятся в Redis)
type Preferences struct {
	Enabled           bool `json:"enabled"`
	RideReminders     bool `json:"rideReminders"`
	DailySummary      bool `json:"dailySummary"`
	NewRidesAvailable bool `json:"newRidesAvailable"`
	LowCredits        bool `json:"lowCredits"`
	BadgesEarned      bool `json:"badgesEarned"`
	GroupInvitations  bool `json:"groupInvitations"`
	RideCompleted     bool `json:"rideCompleted"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Enabled:           true,
		RideReminders:     true,
		DailySummary:      true,
		NewRidesAvailable: true,
		LowCredits:        true,
		BadgesEarned:      true,
		GroupInvitations:  true,
		RideCompleted:     true,
	}
}

// Kind - тип уведомления и соответствующий флаг настроек
type Kind string

const (
	KindGeneral       Kind = "general"
	KindRideReminder  Kind = "ride_reminder"
	KindDailySummary  Kind = "daily_summary"
	KindNewRides      Kind = "new_rides"
	KindLowCredits    Kind = "low_credits"
	KindBadgeEarned   Kind = "badge_earned"
	KindGroupInvite   Kind = "group_invitation"
	KindRideCompleted Kind = "ride_completed"
	KindRideClaimed   Kind = "ride_claimed"
)

// Allows учитывает общий флаг enabled и флаг конкретного типа
func (p Preferences) Allows(kind Kind) bool {
	if !p.Enabled {
		return false
	}
	switch kind {
	case KindRideReminder:
		return p.RideReminders
	case KindDailySummary:
		return p.DailySummary
	case KindNewRides:
		return p.NewRidesAvailable
	case KindLowCredits:
		return p.LowCredits
	case KindBadgeEarned:
		return p.BadgesEarned
	case KindGroupInvite:
		return p.GroupInvitations
	case KindRideCompleted:
		return p.RideCompleted
	}
	return true
}

const lowCreditsTTL = 24 * time.Hour

// UserGetter - источник пользователей (FCM токен)
type UserGetter interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type NotificationService struct {
	redis  *redis.Client
	pusher Pusher
	users  UserGetter
	logger *zap.Logger
}

func NewNotificationService(redisClient *redis.Client, pusher Pusher, users UserGetter, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		redis:  redisClient,
		pusher: pusher,
		users:  users,
		logger: logger,
	}
}

func prefsKey(userID string) string {
	return "notification_prefs:" + userID
}

// Preferences возвращает настройки; отсутствующие поля - true
func (s *NotificationService) Preferences(ctx context.Context, userID string) (Preferences, error) {
	prefs := DefaultPreferences()
	val, err := s.redis.Get(ctx, prefsKey(userID)).Result()
	if err == redis.Nil {
		return prefs, nil
	} else if err != nil {
		return prefs, fmt.Errorf("ошибка при получении настроек: %w", err)
	}
	if err := json.Unmarshal([]byte(val), &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("ошибка при разборе настроек: %w", err)
	}
	return prefs, nil
}

func (s *NotificationService) SavePreferences(ctx context.Context, userID string, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, prefsKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении настроек: %w", err)
	}
	return nil
}

// NotifyUser отправляет push, если у пользователя есть токен и тип разрешен.
// Возвращает false, если уведомление пропущено.
func (s *NotificationService) NotifyUser(ctx context.Context, userID string, kind Kind, title, body string, data map[string]string) (bool, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.FCMToken == "" {
		return false, nil
	}

	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		s.logger.Warn("Настройки уведомлений недоступны, используем значения по умолчанию",
			zap.String("user_id", userID), zap.Error(err))
	}
	if !prefs.Allows(kind) {
		return false, nil
	}

	if data == nil {
		data = map[string]string{}
	}
	data["type"] = string(kind)
	if err := s.pusher.SendToDevice(ctx, user.FCMToken, title, body, data); err != nil {
		return false, err
	}
	return true, nil
}

// Once - SETNX ключа с TTL; true, если ключ установлен впервые
func (s *NotificationService) Once(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, key, 1, ttl).Result()
}

// notify - вспомогательная обертка для фоновых уведомлений: ошибки только логируются
func (s *NotificationService) notify(ctx context.Context, userID string, kind Kind, title, body string, data map[string]string) {
	if _, err := s.NotifyUser(ctx, userID, kind, title, body, data); err != nil {
		s.logger.Warn("Не удалось отправить уведомление",
			zap.String("user_id", userID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// RideClaimed - создателю поездки
func (s *NotificationService) RideClaimed(ctx context.Context, ride *models.Ride, pickerName string) {
	s.notify(ctx, ride.CreatorID, KindRideClaimed, "🎉 Course prise !",
		fmt.Sprintf("%s a pris votre course (%s)", pickerName, ride.PickupAddress),
		map[string]string{"ride_id": ride.ID})
}

// NewRides - каждому получателю отдельно, с учетом его настроек
func (s *NotificationService) NewRides(ctx context.Context, userIDs []string, count int) {
	body := fmt.Sprintf("%d nouvelle%s course%s disponible%s sur la marketplace", count, plural(count), plural(count), plural(count))
	for _, userID := range userIDs {
		s.notify(ctx, userID, KindNewRides, "🆕 Nouvelles courses !", body, nil)
	}
}

func LowCreditsBody(credits int) string {
	if credits <= 0 {
		return "Vous n'avez plus de crédits ! Publiez des courses pour en gagner"
	}
	return fmt.Sprintf("Plus que %d crédit%s. Pensez à publier des courses !", credits, plural(credits))
}

// LowCredits - не чаще раза в сутки и только при балансе < 2
func (s *NotificationService) LowCredits(ctx context.Context, userID string, credits int) {
	if credits >= 2 {
		return
	}
	first, err := s.Once(ctx, "low_credits_alert:"+userID, lowCreditsTTL)
	if err != nil {
		s.logger.Warn("Ошибка дедупликации уведомления", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !first {
		return
	}
	s.notify(ctx, userID, KindLowCredits, "⚠️ Crédits faibles", LowCreditsBody(credits), nil)
}

func (s *NotificationService) BadgeEarned(ctx context.Context, userID string, badge models.Badge) {
	s.notify(ctx, userID, KindBadgeEarned, "🏆 Nouveau badge !",
		fmt.Sprintf("%s : %s", badge.Name, badge.Description),
		map[string]string{"badge_id": badge.ID})
}

// GroupJoined - владельцу группы
func (s *NotificationService) GroupJoined(ctx context.Context, ownerID, memberName string, group *models.Group) {
	s.notify(ctx, ownerID, KindGroupInvite, "👥 Invitation groupe",
		fmt.Sprintf("%s a rejoint \"%s\"", memberName, group.Name),
		map[string]string{"group_id": group.ID})
}

func (s *NotificationService) VerificationReviewed(ctx context.Context, user *models.User) {
	title, body := "✅ Compte vérifié", "Votre compte est vérifié. Vous pouvez publier et prendre des courses !"
	if user.VerificationStatus == models.VerificationRejected {
		title = "❌ Vérification refusée"
		body = "Raison : " + user.RejectionReason
	}
	s.notify(ctx, user.ID, KindGeneral, title, body,
		map[string]string{"verification_status": string(user.VerificationStatus)})
}

// Test - проверка доставки с экрана настроек
func (s *NotificationService) Test(ctx context.Context, userID string) (bool, error) {
	return s.NotifyUser(ctx, userID, KindGeneral, "🔔 Notification test", "Les notifications fonctionnent correctement !", nil)
}
