package planning

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corail-backend/internal/models"
)

func at(s string) *time.Time {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(v int) *int { return &v }

func TestProjectMarketplaceRide(t *testing.T) {
	now := *at("2025-03-10 12:00:00")

	t.Run("published ride is not on the calendar", func(t *testing.T) {
		_, ok := Project(MarketplaceRide{models.Ride{
			ID: "r1", Status: models.RideStatusPublished, ScheduledAt: at("2025-03-11 09:00:00"),
		}}, now)
		assert.False(t, ok)
	})

	t.Run("ride without schedule is skipped", func(t *testing.T) {
		_, ok := Project(MarketplaceRide{models.Ride{ID: "r1", Status: models.RideStatusClaimed}}, now)
		assert.False(t, ok)
	})

	t.Run("claimed future ride", func(t *testing.T) {
		ev, ok := Project(MarketplaceRide{models.Ride{
			ID:              "r1",
			Status:          models.RideStatusClaimed,
			ScheduledAt:     at("2025-03-11 09:00:00"),
			PickupAddress:   "Gare du Nord",
			DropoffAddress:  "CDG",
			DurationMinutes: intPtr(45),
		}}, now)
		require.True(t, ok)

		want := Event{
			ID:           "marketplace-r1",
			EventType:    models.EventTypeRide,
			StartTime:    "2025-03-11 09:00:00",
			EndTime:      "2025-03-11 09:45:00",
			StartAddress: "Gare du Nord",
			EndAddress:   "CDG",
			RideSource:   "MARKETPLACE",
			Status:       "CLAIMED",
			StatusLabel:  "CLAIMED",
			Notes:        "Course Corail",
			Color:        ColorMarketplace,
			Label:        "Corail Marketplace",
			Icon:         "git-network",
			TimeLabel:    "09:00",
		}
		if diff := cmp.Diff(want, ev); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("completed past ride is muted", func(t *testing.T) {
		ev, ok := Project(MarketplaceRide{models.Ride{
			ID: "r2", Status: models.RideStatusCompleted, ScheduledAt: at("2025-03-09 09:00:00"),
		}}, now)
		require.True(t, ok)
		assert.True(t, ev.IsPast)
		assert.Equal(t, ColorPast, ev.Color)
		assert.Equal(t, "Course Corail (terminée)", ev.Notes)
		assert.Equal(t, "2025-03-09 10:00:00", ev.EndTime)
	})
}

func TestProjectPersonalRide(t *testing.T) {
	now := *at("2025-03-10 12:00:00")

	t.Run("only scheduled rides", func(t *testing.T) {
		_, ok := Project(PersonalRide{models.PersonalRide{
			ID: "p1", Status: models.PersonalRideCompleted, ScheduledAt: at("2025-03-11 09:00:00"),
		}}, now)
		assert.False(t, ok)
	})

	t.Run("colors by source", func(t *testing.T) {
		tests := []struct {
			source models.RideSource
			color  string
			icon   string
		}{
			{models.SourceUber, "#000000", "logo-uber"},
			{models.SourceBolt, "#34d399", "flash"},
			{models.SourceDirectClient, "#8b5cf6", "call"},
			{models.SourceOther, "#6366f1", "car"},
		}
		for _, tt := range tests {
			t.Run(string(tt.source), func(t *testing.T) {
				ev, ok := Project(PersonalRide{models.PersonalRide{
					ID: "p1", Source: tt.source, Status: models.PersonalRideScheduled, ScheduledAt: at("2025-03-11 09:00:00"),
				}}, now)
				require.True(t, ok)
				assert.Equal(t, tt.color, ev.Color)
				assert.Equal(t, tt.icon, ev.Icon)
				assert.Equal(t, "personal-p1", ev.ID)
				assert.Equal(t, "Planifié", ev.StatusLabel)
			})
		}
	})

	t.Run("past ride is muted", func(t *testing.T) {
		ev, ok := Project(PersonalRide{models.PersonalRide{
			ID: "p1", Source: models.SourceUber, Status: models.PersonalRideScheduled, ScheduledAt: at("2025-03-10 08:00:00"),
		}}, now)
		require.True(t, ok)
		assert.Equal(t, ColorPast, ev.Color)
	})
}

func TestProjectCalendarEntry(t *testing.T) {
	now := *at("2025-03-10 12:00:00")

	ev, ok := Project(CalendarEntry{models.CalendarEntry{
		ID:        "e1",
		EventType: models.EventTypeBreak,
		StartTime: *at("2025-03-09 13:00:00"),
		EndTime:   *at("2025-03-09 13:30:00"),
		Status:    "SCHEDULED",
	}}, now)
	require.True(t, ok)
	assert.Equal(t, "#10b981", ev.Color, "past entries keep their own color")
	assert.True(t, ev.IsPast)
	assert.Equal(t, "Pause", ev.Label)
	assert.Equal(t, "cafe", ev.Icon)

	ev, _ = Project(CalendarEntry{models.CalendarEntry{
		ID: "e2", EventType: models.EventTypeRide, StartTime: *at("2025-03-11 13:00:00"), Color: "#123456",
	}}, now)
	assert.Equal(t, "#123456", ev.Color)
}

func TestAggregateKeepsSourceOrder(t *testing.T) {
	now := *at("2025-03-10 12:00:00")

	events := Aggregate(now,
		FromCalendarEntries([]models.CalendarEntry{{ID: "e1", EventType: models.EventTypePersonal, StartTime: *at("2025-03-12 10:00:00")}}),
		FromRides([]models.Ride{
			{ID: "r1", Status: models.RideStatusClaimed, ScheduledAt: at("2025-03-11 10:00:00")},
			{ID: "r2", Status: models.RideStatusPublished, ScheduledAt: at("2025-03-11 11:00:00")},
		}),
		FromPersonalRides([]models.PersonalRide{{ID: "p1", Status: models.PersonalRideScheduled, ScheduledAt: at("2025-03-10 10:00:00")}}),
	)

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"e1", "marketplace-r1", "personal-p1"}, ids)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Course directe", Label(models.EventTypeRide, "DIRECT"))
	assert.Equal(t, "Course directe", Label(models.EventTypeRide, "DIRECT_CLIENT"))
	assert.Equal(t, "Course VTC", Label(models.EventTypeRide, ""))
	assert.Equal(t, "Entretien", Label(models.EventTypeMaintenance, ""))
	assert.Equal(t, "Événement", Label("OTHER", ""))
	assert.Equal(t, "calendar", Icon("OTHER", ""))
	assert.Equal(t, "#64748b", TypeColor("OTHER"))
	assert.Equal(t, "En cours", StatusLabel("IN_PROGRESS"))
	assert.Equal(t, "WHATEVER", StatusLabel("WHATEVER"))
}

func sampleEvents() []Event {
	return []Event{
		{ID: "b", StartTime: "2025-03-05 14:00:00", Color: "#10b981"},
		{ID: "a", StartTime: "2025-03-05 09:30:00", Color: "#ff6b47"},
		{ID: "c", StartTime: "2025-03-07 09:00:00", Color: "#8b5cf6"},
	}
}

func TestMonth(t *testing.T) {
	view := Month(sampleEvents(), "2025-03-06")

	require.Contains(t, view.MarkedDates, "2025-03-05")
	assert.Len(t, view.MarkedDates["2025-03-05"].Dots, 2)
	assert.False(t, view.MarkedDates["2025-03-05"].Selected)

	sel := view.MarkedDates["2025-03-06"]
	require.NotNil(t, sel)
	assert.True(t, sel.Selected)
	assert.Equal(t, ColorSelected, sel.SelectedColor)
	assert.Empty(t, sel.Dots)

	assert.Len(t, view.EventsByDate["2025-03-05"], 2)
	assert.Len(t, view.EventsByDate["2025-03-07"], 1)
}

func TestWeek(t *testing.T) {
	selected := *at("2025-03-05 00:00:00") // mercredi
	today := *at("2025-03-07 10:00:00")

	view := Week(sampleEvents(), selected, today)

	assert.Equal(t, "Semaine du 3 mars", view.Title)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2025-03-03", view.Days[0].Date)
	assert.Equal(t, "lun.", view.Days[0].DayName)
	assert.Equal(t, "dim.", view.Days[6].DayName)
	assert.True(t, view.Days[2].IsSelected)
	assert.True(t, view.Days[4].IsToday)

	require.Len(t, view.SelectedEvents, 2)
	assert.Equal(t, "a", view.SelectedEvents[0].ID)
	assert.Equal(t, "b", view.SelectedEvents[1].ID)
}

func TestWeekStartOnSunday(t *testing.T) {
	assert.Equal(t, *at("2025-03-03 00:00:00"), WeekStart(*at("2025-03-09 18:00:00")))
	assert.Equal(t, *at("2025-03-03 00:00:00"), WeekStart(*at("2025-03-03 00:00:00")))
}

func TestDay(t *testing.T) {
	now := *at("2025-03-05 10:15:00")
	view := Day(sampleEvents(), "2025-03-05", now)

	require.Len(t, view.Slots, 24)
	assert.Equal(t, "09:00", view.Slots[9].Label)
	require.Len(t, view.Slots[9].Events, 1)
	assert.Equal(t, "a", view.Slots[9].Events[0].ID)
	require.Len(t, view.Slots[14].Events, 1)
	assert.Empty(t, view.Slots[10].Events)

	require.NotNil(t, view.Now)
	assert.Equal(t, 10, view.Now.Hour)
	assert.Equal(t, "10:15", view.Now.Label)

	other := Day(sampleEvents(), "2025-03-07", now)
	assert.Nil(t, other.Now)
}

func TestWindow(t *testing.T) {
	from, to := Window(*at("2025-03-01 12:00:00")) // samedi
	assert.Equal(t, *at("2025-02-24 00:00:00"), from)
	assert.Equal(t, *at("2025-04-01 00:00:00"), to)

	events := InWindow([]Event{
		{ID: "in", StartTime: "2025-02-25 08:00:00"},
		{ID: "out", StartTime: "2025-04-01 00:00:00"},
	}, from, to)
	require.Len(t, events, 1)
	assert.Equal(t, "in", events[0].ID)
}

type randomPlan struct {
	rides    []models.Ride
	personal []models.PersonalRide
	entries  []models.CalendarEntry
	// durations - заявленная длительность поездок по id события
	durations map[string]*int
	want      int
}

func randomTime(rng *rand.Rand, now time.Time) time.Time {
	const window = 30 * 24 * time.Hour
	offset := time.Duration(rng.Int63n(int64(2*window/time.Second))) * time.Second
	return now.Add(offset - window)
}

func randomDuration(rng *rand.Rand) *int {
	if rng.Intn(3) == 0 {
		return nil
	}
	return intPtr(1 + rng.Intn(240))
}

func newRandomPlan(rng *rand.Rand, now time.Time) randomPlan {
	plan := randomPlan{durations: map[string]*int{}}
	rideStatuses := []models.RideStatus{
		models.RideStatusPublished, models.RideStatusClaimed, models.RideStatusCompleted, models.RideStatusCancelled,
	}
	personalStatuses := []models.PersonalRideStatus{
		models.PersonalRideScheduled, models.PersonalRideCompleted, models.PersonalRideCancelled,
	}
	sources := []models.RideSource{
		models.SourceUber, models.SourceBolt, models.SourceDirectClient, models.SourceOther, "",
	}
	eventTypes := []models.EventType{
		models.EventTypeRide, models.EventTypeBreak, models.EventTypeMaintenance, models.EventTypePersonal,
	}

	for i := rng.Intn(12); i > 0; i-- {
		r := models.Ride{
			ID:              fmt.Sprintf("r%d", i),
			Status:          rideStatuses[rng.Intn(len(rideStatuses))],
			DurationMinutes: randomDuration(rng),
		}
		if rng.Intn(8) > 0 {
			start := randomTime(rng, now)
			r.ScheduledAt = &start
		}
		if r.ScheduledAt != nil && (r.Status == models.RideStatusClaimed || r.Status == models.RideStatusCompleted) {
			plan.durations["marketplace-"+r.ID] = r.DurationMinutes
			plan.want++
		}
		plan.rides = append(plan.rides, r)
	}

	for i := rng.Intn(12); i > 0; i-- {
		r := models.PersonalRide{
			ID:              fmt.Sprintf("p%d", i),
			Status:          personalStatuses[rng.Intn(len(personalStatuses))],
			Source:          sources[rng.Intn(len(sources))],
			DurationMinutes: randomDuration(rng),
		}
		if rng.Intn(8) > 0 {
			start := randomTime(rng, now)
			r.ScheduledAt = &start
		}
		if r.ScheduledAt != nil && r.Status == models.PersonalRideScheduled {
			plan.durations["personal-"+r.ID] = r.DurationMinutes
			plan.want++
		}
		plan.personal = append(plan.personal, r)
	}

	for i := rng.Intn(12); i > 0; i-- {
		start := randomTime(rng, now)
		plan.entries = append(plan.entries, models.CalendarEntry{
			ID:        fmt.Sprintf("e%d", i),
			EventType: eventTypes[rng.Intn(len(eventTypes))],
			StartTime: start,
			EndTime:   start.Add(time.Duration(15+rng.Intn(180)) * time.Minute),
		})
		plan.want++
	}
	return plan
}

func TestAggregationProperties(t *testing.T) {
	now := *at("2025-03-10 12:00:00")
	rng := rand.New(rand.NewSource(20250310))

	for round := 0; round < 300; round++ {
		plan := newRandomPlan(rng, now)
		events := Aggregate(now,
			FromCalendarEntries(plan.entries),
			FromRides(plan.rides),
			FromPersonalRides(plan.personal))
		require.Len(t, events, plan.want, "round %d", round)

		// каждое событие ровно под одной датой, точек столько же, сколько событий
		month := Month(events, "")
		seen := map[string]int{}
		for date, byDate := range month.EventsByDate {
			mark, ok := month.MarkedDates[date]
			require.True(t, ok, "round %d: no mark for %s", round, date)
			require.Len(t, mark.Dots, len(byDate), "round %d: %s", round, date)
			for i, ev := range byDate {
				assert.Equal(t, date, ev.Date(), "round %d", round)
				assert.Equal(t, ev.Color, mark.Dots[i].Color, "round %d", round)
				seen[ev.ID]++
			}
		}
		assert.Len(t, month.MarkedDates, len(month.EventsByDate), "round %d", round)
		require.Len(t, seen, len(events), "round %d", round)
		for id, n := range seen {
			assert.Equal(t, 1, n, "round %d: %s", round, id)
		}

		for _, ev := range events {
			start, err := time.Parse(TimestampLayout, ev.StartTime)
			require.NoError(t, err)
			end, err := time.Parse(TimestampLayout, ev.EndTime)
			require.NoError(t, err)
			assert.Equal(t, start.Before(now), ev.IsPast, "round %d: %s", round, ev.ID)

			duration, isRide := plan.durations[ev.ID]
			if !isRide {
				continue
			}
			want := DefaultDuration
			if duration != nil {
				want = time.Duration(*duration) * time.Minute
			}
			assert.Equal(t, want, end.Sub(start), "round %d: %s", round, ev.ID)
			if ev.IsPast {
				assert.Equal(t, ColorPast, ev.Color, "round %d: %s", round, ev.ID)
			} else {
				assert.NotEqual(t, ColorPast, ev.Color, "round %d: %s", round, ev.ID)
			}
		}
	}
}
