package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"corail-backend/internal/models"
)

const (
	reminderLead     = time.Hour
	completionDelay  = 2 * time.Hour
	completionWindow = 24 * time.Hour
	dedupeTTL        = 48 * time.Hour
)

// ReminderStore - выборки поездок для напоминаний
type ReminderStore interface {
	RidesScheduledBetween(ctx context.Context, status models.RideStatus, from, to time.Time) ([]models.Ride, error)
	ScheduledPersonalRidesBetween(ctx context.Context, driverID string, from, to time.Time) ([]models.PersonalRide, error)
}

// ReminderScheduler - периодические напоминания: за час до поездки,
// через 2 часа после начала невыполненной поездки и утренняя сводка
type ReminderScheduler struct {
	store       ReminderStore
	notifier    *NotificationService
	logger      *zap.Logger
	interval    time.Duration
	summaryHour int
	now         func() time.Time
}

func NewReminderScheduler(store ReminderStore, notifier *NotificationService, logger *zap.Logger, interval time.Duration, summaryHour int) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderScheduler{
		store:       store,
		notifier:    notifier,
		logger:      logger,
		interval:    interval,
		summaryHour: summaryHour,
		now:         time.Now,
	}
}

// WithClock подменяет источник времени (тесты)
func (r *ReminderScheduler) WithClock(now func() time.Time) *ReminderScheduler {
	r.now = now
	return r
}

// Run блокируется до отмены контекста
func (r *ReminderScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Планировщик напоминаний запущен", zap.Duration("interval", r.interval))
	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Планировщик напоминаний остановлен")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick - один проход всех проверок
func (r *ReminderScheduler) Tick(ctx context.Context) {
	now := r.now()
	if err := r.rideReminders(ctx, now); err != nil {
		r.logger.Error("Ошибка напоминаний о поездках", zap.Error(err))
	}
	if err := r.completionReminders(ctx, now); err != nil {
		r.logger.Error("Ошибка напоминаний о завершении", zap.Error(err))
	}
	if now.Hour() == r.summaryHour {
		if err := r.dailySummary(ctx, now); err != nil {
			r.logger.Error("Ошибка утренней сводки", zap.Error(err))
		}
	}
}

func (r *ReminderScheduler) once(ctx context.Context, key string) bool {
	first, err := r.notifier.Once(ctx, key, dedupeTTL)
	if err != nil {
		r.logger.Warn("Ошибка дедупликации напоминания", zap.String("key", key), zap.Error(err))
		return false
	}
	return first
}

// due: now в [start-1h, start)
func due(start, now time.Time) bool {
	return now.Before(start) && !now.Before(start.Add(-reminderLead))
}

func (r *ReminderScheduler) rideReminders(ctx context.Context, now time.Time) error {
	to := now.Add(reminderLead + time.Second)

	rides, err := r.store.RidesScheduledBetween(ctx, models.RideStatusClaimed, now, to)
	if err != nil {
		return err
	}
	for _, ride := range rides {
		if ride.PickerID == nil || ride.ScheduledAt == nil || !due(*ride.ScheduledAt, now) {
			continue
		}
		if !r.once(ctx, "reminder:ride:"+ride.ID) {
			continue
		}
		r.notifier.notify(ctx, *ride.PickerID, KindRideReminder, "🚗 Course dans 1 heure",
			fmt.Sprintf("%s → %s", ride.PickupAddress, ride.DropoffAddress),
			map[string]string{"ride_id": ride.ID})
	}

	personal, err := r.store.ScheduledPersonalRidesBetween(ctx, "", now, to)
	if err != nil {
		return err
	}
	for _, ride := range personal {
		if ride.ScheduledAt == nil || !due(*ride.ScheduledAt, now) {
			continue
		}
		if !r.once(ctx, "reminder:personal:"+ride.ID) {
			continue
		}
		r.notifier.notify(ctx, ride.DriverID, KindRideReminder, "🚗 Course dans 1 heure",
			fmt.Sprintf("%s → %s", ride.PickupAddress, ride.DropoffAddress),
			map[string]string{"personal_ride_id": ride.ID})
	}
	return nil
}

func (r *ReminderScheduler) completionReminders(ctx context.Context, now time.Time) error {
	until := now.Add(-completionDelay)
	rides, err := r.store.RidesScheduledBetween(ctx, models.RideStatusClaimed, until.Add(-completionWindow), until.Add(time.Second))
	if err != nil {
		return err
	}
	for _, ride := range rides {
		if ride.PickerID == nil || ride.ScheduledAt == nil || ride.ScheduledAt.After(until) {
			continue
		}
		if !r.once(ctx, "reminder:complete:"+ride.ID) {
			continue
		}
		r.notifier.notify(ctx, *ride.PickerID, KindRideCompleted, "✅ Terminer la course ?",
			"Pensez à marquer votre course comme terminée pour gagner un crédit bonus",
			map[string]string{"ride_id": ride.ID})
	}
	return nil
}

func (r *ReminderScheduler) dailySummary(ctx context.Context, now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	counts := make(map[string]int)
	var order []string
	add := func(userID string) {
		if _, ok := counts[userID]; !ok {
			order = append(order, userID)
		}
		counts[userID]++
	}

	rides, err := r.store.RidesScheduledBetween(ctx, models.RideStatusClaimed, dayStart, dayEnd)
	if err != nil {
		return err
	}
	for _, ride := range rides {
		if ride.PickerID != nil {
			add(*ride.PickerID)
		}
	}
	personal, err := r.store.ScheduledPersonalRidesBetween(ctx, "", dayStart, dayEnd)
	if err != nil {
		return err
	}
	for _, ride := range personal {
		add(ride.DriverID)
	}

	date := dayStart.Format("2006-01-02")
	for _, userID := range order {
		if !r.once(ctx, fmt.Sprintf("reminder:daily:%s:%s", userID, date)) {
			continue
		}
		r.notifier.notify(ctx, userID, KindDailySummary, "📅 Planning du jour", DailySummaryBody(counts[userID]), nil)
	}
	return nil
}

func DailySummaryBody(n int) string {
	return fmt.Sprintf("Vous avez %d course%s prévue%s aujourd'hui", n, plural(n), plural(n))
}
