// Package store - слой доступа к данным поверх gorm. Один метод на операцию,
// ошибки возвращаются как сентинелы, которые обработчики переводят в HTTP статусы.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corail-backend/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrRideNotAvailable    = errors.New("ride not available")
	ErrOwnRide             = errors.New("cannot claim own ride")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyReviewed     = errors.New("verification already reviewed")
	ErrAlreadyResponded    = errors.New("quote already answered")
	ErrAlreadyMember       = errors.New("already a group member")
)

type Store struct {
	db           *gorm.DB
	welcomeBonus int
	now          func() time.Time
}

type Option func(*Store)

// WithWelcomeBonus - кредиты при создании пользователя
func WithWelcomeBonus(amount int) Option {
	return func(s *Store) { s.welcomeBonus = amount }
}

// WithClock подменяет часы (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Models - все таблицы для автомиграции
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Ride{},
		&models.PersonalRide{},
		&models.CalendarEntry{},
		&models.Badge{},
		&models.UserBadge{},
		&models.CreditTransaction{},
		&models.ActivityLog{},
		&models.Quote{},
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping проверяет соединение с БД
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// addCredit пишет запись в журнал кредитов внутри транзакции
func addCredit(tx *gorm.DB, userID string, amount int, kind models.CreditTransactionType, rideID *string, description string) error {
	entry := models.CreditTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		TransactionType: kind,
		RideID:          rideID,
		Description:     description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("credit %s: %w", kind, err)
	}
	return nil
}

func logActivity(tx *gorm.DB, userID, action, description string, rideID *string) error {
	entry := models.ActivityLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		ActionType:  action,
		Description: description,
		RideID:      rideID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("activity %s: %w", action, err)
	}
	return nil
}

// lockUser - SELECT ... FOR UPDATE по строке пользователя; списания одного
// пользователя выполняются по очереди до конца транзакции
func lockUser(tx *gorm.DB, userID string) error {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, "id = ?", userID).Error
	return notFound(err)
}

func balance(tx *gorm.DB, userID string) (int, error) {
	var total int
	err := tx.Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
