package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"corail-backend/internal/models"
)

type fakeReminderStore struct {
	rides    []models.Ride
	personal []models.PersonalRide
}

func (f *fakeReminderStore) RidesScheduledBetween(_ context.Context, status models.RideStatus, from, to time.Time) ([]models.Ride, error) {
	var out []models.Ride
	for _, r := range f.rides {
		if r.Status == status && r.PickerID != nil && r.ScheduledAt != nil &&
			!r.ScheduledAt.Before(from) && r.ScheduledAt.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) ScheduledPersonalRidesBetween(_ context.Context, driverID string, from, to time.Time) ([]models.PersonalRide, error) {
	var out []models.PersonalRide
	for _, r := range f.personal {
		if (driverID == "" || r.DriverID == driverID) && r.ScheduledAt != nil &&
			!r.ScheduledAt.Before(from) && r.ScheduledAt.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func strPtr(s string) *string { return &s }

func TestReminderTick(t *testing.T) {
	ctx := context.Background()
	users := fakeUsers{
		"picker": {ID: "picker", FCMToken: "tok-p"},
		"driver": {ID: "driver", FCMToken: "tok-d"},
	}
	notifier, pusher, _ := newNotifier(t, users)

	st := &fakeReminderStore{
		rides: []models.Ride{
			{ID: "soon", Status: models.RideStatusClaimed, PickerID: strPtr("picker"), ScheduledAt: ts("2025-03-10 10:30"), PickupAddress: "Gare du Nord", DropoffAddress: "CDG"},
			{ID: "later", Status: models.RideStatusClaimed, PickerID: strPtr("picker"), ScheduledAt: ts("2025-03-10 12:00")},
			{ID: "overdue", Status: models.RideStatusClaimed, PickerID: strPtr("picker"), ScheduledAt: ts("2025-03-10 07:00")},
		},
		personal: []models.PersonalRide{
			{ID: "p1", DriverID: "driver", Status: models.PersonalRideScheduled, ScheduledAt: ts("2025-03-10 11:00"), PickupAddress: "Orly", DropoffAddress: "Bastille"},
		},
	}

	now := *ts("2025-03-10 10:00")
	sched := NewReminderScheduler(st, notifier, zap.NewNop(), time.Minute, 8).
		WithClock(func() time.Time { return now })

	sched.Tick(ctx)
	pushes := pusher.sent()
	require.Len(t, pushes, 3)

	byTitle := map[string][]push{}
	for _, p := range pushes {
		byTitle[p.Title] = append(byTitle[p.Title], p)
	}
	require.Len(t, byTitle["🚗 Course dans 1 heure"], 2)
	assert.Equal(t, "Gare du Nord → CDG", byTitle["🚗 Course dans 1 heure"][0].Body)
	assert.Equal(t, "Orly → Bastille", byTitle["🚗 Course dans 1 heure"][1].Body)
	require.Len(t, byTitle["✅ Terminer la course ?"], 1)
	assert.Equal(t, "overdue", byTitle["✅ Terminer la course ?"][0].Data["ride_id"])

	// повторный проход ничего не шлет
	sched.Tick(ctx)
	assert.Len(t, pusher.sent(), 3)
}

func TestDailySummary(t *testing.T) {
	ctx := context.Background()
	notifier, pusher, _ := newNotifier(t, fakeUsers{"picker": {ID: "picker", FCMToken: "tok-p"}})

	st := &fakeReminderStore{
		rides: []models.Ride{
			{ID: "a", Status: models.RideStatusClaimed, PickerID: strPtr("picker"), ScheduledAt: ts("2025-03-10 14:00")},
			{ID: "b", Status: models.RideStatusClaimed, PickerID: strPtr("picker"), ScheduledAt: ts("2025-03-10 18:00")},
		},
	}
	now := *ts("2025-03-10 08:05")
	sched := NewReminderScheduler(st, notifier, zap.NewNop(), time.Minute, 8).
		WithClock(func() time.Time { return now })

	sched.Tick(ctx)
	sched.Tick(ctx)

	pushes := pusher.sent()
	require.Len(t, pushes, 1)
	assert.Equal(t, "📅 Planning du jour", pushes[0].Title)
	assert.Equal(t, "Vous avez 2 courses prévues aujourd'hui", pushes[0].Body)
	assert.Equal(t, "Vous avez 1 course prévue aujourd'hui", DailySummaryBody(1))
}

func TestReminderRunStopsOnCancel(t *testing.T) {
	notifier, _, _ := newNotifier(t, fakeUsers{})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sched := NewReminderScheduler(&fakeReminderStore{}, notifier, zap.NewNop(), 10*time.Millisecond, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
