package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corail-backend/internal/models"
	"corail-backend/internal/planning"
	"corail-backend/internal/validation"
)

type planningBody struct {
	View   string              `json:"view"`
	Date   string              `json:"date"`
	From   string              `json:"from"`
	To     string              `json:"to"`
	Events []planning.Event    `json:"events"`
	Month  *planning.MonthView `json:"month"`
	Week   *planning.WeekView  `json:"week"`
	Day    *planning.DayView   `json:"day"`
}

// seedPlanning: взятая поездка 12 марта, личная 10 марта в 9:00, перерыв 10 марта в 13:00
func seedPlanning(t *testing.T, env *testEnv) {
	t.Helper()
	env.verified(t, "alice")
	env.verified(t, "bob")

	ride := env.publish(t, "alice", gin.H{
		"pickup_address": "Gare de Lyon", "dropoff_address": "Orly", "price": "45",
		"scheduled_at": "2025-03-12T14:00:00Z", "duration_minutes": 40,
	})
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/rides/"+ride.ID+"/claim", "bob", nil).Code)

	w := env.do(t, http.MethodPost, "/api/personal-rides", "bob", gin.H{
		"source": "BOLT", "pickup_address": "Opéra", "dropoff_address": "La Défense",
		"price": "28", "status": "SCHEDULED", "scheduled_at": "2025-03-10T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/calendar", "bob", gin.H{
		"event_type": "BREAK", "start_time": "2025-03-10T13:00:00Z", "notes": "Déjeuner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPlanningMonth(t *testing.T) {
	env := newEnv(t, 1)
	seedPlanning(t, env)

	var body planningBody
	decode(t, env.do(t, http.MethodGet, "/api/planning", "bob", nil), &body)
	assert.Equal(t, "month", body.View)
	assert.Equal(t, "2025-03-10", body.Date)
	assert.Equal(t, "2025-03-01", body.From)
	require.Len(t, body.Events, 3)

	// порядок источников: календарь, маркетплейс, личные
	assert.Equal(t, "2025-03-10 13:00:00", body.Events[0].StartTime)
	assert.Equal(t, "2025-03-10 14:00:00", body.Events[0].EndTime)
	assert.Equal(t, "Pause", body.Events[0].Label)
	assert.Equal(t, "2025-03-12 14:40:00", body.Events[1].EndTime)
	assert.False(t, body.Events[1].IsPast)
	assert.Equal(t, "2025-03-10 09:00:00", body.Events[2].StartTime)
	assert.True(t, body.Events[2].IsPast)

	require.NotNil(t, body.Month)
	assert.Len(t, body.Month.EventsByDate["2025-03-10"], 2)
	require.Contains(t, body.Month.MarkedDates, "2025-03-12")
	assert.Equal(t, planning.ColorMarketplace, body.Month.MarkedDates["2025-03-12"].Dots[0].Color)
	assert.True(t, body.Month.MarkedDates["2025-03-10"].Selected)
}

func TestPlanningWeekAndDay(t *testing.T) {
	env := newEnv(t, 1)
	seedPlanning(t, env)

	var week planningBody
	decode(t, env.do(t, http.MethodGet, "/api/planning?view=week&date=2025-03-12", "bob", nil), &week)
	require.NotNil(t, week.Week)
	assert.Equal(t, "Semaine du 10 mars", week.Week.Title)
	require.Len(t, week.Week.Days, 7)
	assert.True(t, week.Week.Days[0].IsToday)
	assert.True(t, week.Week.Days[2].IsSelected)
	assert.Len(t, week.Week.Days[0].Events, 2)
	assert.Len(t, week.Week.SelectedEvents, 1)

	var day planningBody
	decode(t, env.do(t, http.MethodGet, "/api/planning?view=day&date=2025-03-10", "bob", nil), &day)
	require.NotNil(t, day.Day)
	require.Len(t, day.Day.Slots, 24)
	assert.Len(t, day.Day.Slots[9].Events, 1)
	assert.Len(t, day.Day.Slots[13].Events, 1)
	require.NotNil(t, day.Day.Now)
	assert.Equal(t, "12:00", day.Day.Now.Label)

	// чужие события не видны
	var other planningBody
	decode(t, env.do(t, http.MethodGet, "/api/planning?view=week", "carol", nil), &other)
	assert.Empty(t, other.Events)
}

func TestPlanningRejectsBadInput(t *testing.T) {
	env := newEnv(t, 0)

	w := env.do(t, http.MethodGet, "/api/planning?view=year", "bob", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Vue invalide", errorMessage(t, w))

	w = env.do(t, http.MethodGet, "/api/planning?date=10/03/2025", "bob", nil)
	assert.Equal(t, "Date invalide", errorMessage(t, w))

	w = env.do(t, http.MethodPost, "/api/calendar", "bob", gin.H{"event_type": "NAP", "start_time": "2025-03-10T13:00:00Z"})
	assert.Equal(t, validation.MsgInvalidEventType, errorMessage(t, w))

	w = env.do(t, http.MethodPost, "/api/calendar", "bob", gin.H{
		"event_type": "BREAK", "start_time": "2025-03-10T13:00:00Z", "end_time": "2025-03-10T12:00:00Z",
	})
	assert.Equal(t, validation.MsgInvalidTimeRange, errorMessage(t, w))
}

func TestCalendarEntryDelete(t *testing.T) {
	env := newEnv(t, 0)

	w := env.do(t, http.MethodPost, "/api/calendar", "bob", gin.H{"event_type": "MAINTENANCE", "start_time": "2025-03-11T08:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev planning.Event
	decode(t, w, &ev)
	assert.Equal(t, "Entretien", ev.Label)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/calendar/"+ev.ID, "alice", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/calendar/"+ev.ID, "bob", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/calendar/"+ev.ID, "bob", nil).Code)
}

func TestPlanningSurvivesFailingSources(t *testing.T) {
	env := newEnv(t, 1)
	seedPlanning(t, env)
	migrator := env.store.DB().Migrator()

	require.NoError(t, migrator.DropTable(&models.CalendarEntry{}))
	w := env.do(t, http.MethodGet, "/api/planning", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "failed")

	var body planningBody
	decode(t, w, &body)
	require.Len(t, body.Events, 2)
	assert.Equal(t, "marketplace-", body.Events[0].ID[:len("marketplace-")])

	require.NoError(t, migrator.DropTable(&models.Ride{}, &models.PersonalRide{}))
	w = env.do(t, http.MethodGet, "/api/planning?view=day", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &body)
	assert.Empty(t, body.Events)
	require.NotNil(t, body.Day)
	assert.Len(t, body.Day.Slots, 24)
}
