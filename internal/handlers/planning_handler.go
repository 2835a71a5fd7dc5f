package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"corail-backend/internal/planning"
	"corail-backend/internal/validation"
)

const (
	ViewMonth = "month"
	ViewWeek  = "week"
	ViewDay   = "day"
)

// sourceResult - результат загрузки одного источника календаря
type sourceResult struct {
	name    string
	sources []planning.Source
	err     error
}

type planningResponse struct {
	View   string              `json:"view"`
	Date   string              `json:"date"`
	From   string              `json:"from"`
	To     string              `json:"to"`
	Events []planning.Event    `json:"events"`
	Month  *planning.MonthView `json:"month,omitempty"`
	Week   *planning.WeekView  `json:"week,omitempty"`
	Day    *planning.DayView   `json:"day,omitempty"`
}

// PlanningGet - GET /api/planning?view=month|week|day&date=YYYY-MM-DD.
// Три источника загружаются параллельно. Упавший источник только логируется и дает ноль событий,
// ответ всегда 200.
func PlanningGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := c.DefaultQuery("view", ViewMonth)
		if view != ViewMonth && view != ViewWeek && view != ViewDay {
			badRequest(c, "Vue invalide")
			return
		}

		now := d.now().UTC()
		selected := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse(planning.DateLayout, raw)
			if err != nil {
				badRequest(c, "Date invalide")
				return
			}
			selected = parsed
		}
		from, to := planning.Window(selected)

		ctx := c.Request.Context()
		userID := currentUserID(c)
		results := [3]sourceResult{{name: "calendar"}, {name: "marketplace"}, {name: "personal"}}

		var g errgroup.Group
		g.Go(func() error {
			entries, err := d.Store.ListCalendarEntries(ctx, userID, from, to)
			results[0].sources, results[0].err = planning.FromCalendarEntries(entries), err
			return err
		})
		g.Go(func() error {
			rides, err := d.Store.ClaimedRidesBetween(ctx, userID, from, to)
			results[1].sources, results[1].err = planning.FromRides(rides), err
			return err
		})
		g.Go(func() error {
			rides, err := d.Store.ScheduledPersonalRidesBetween(ctx, userID, from, to)
			results[2].sources, results[2].err = planning.FromPersonalRides(rides), err
			return err
		})
		_ = g.Wait()

		sources := make([][]planning.Source, 0, len(results))
		for _, r := range results {
			if r.err != nil {
				d.Logger.Warn("Источник планинга недоступен",
					zap.String("source", r.name), zap.String("user_id", userID), zap.Error(r.err))
				continue
			}
			sources = append(sources, r.sources)
		}

		events := planning.InWindow(planning.Aggregate(now, sources...), from, to)
		resp := planningResponse{
			View:   view,
			Date:   selected.Format(planning.DateLayout),
			From:   from.Format(planning.DateLayout),
			To:     to.Format(planning.DateLayout),
			Events: events,
		}
		switch view {
		case ViewWeek:
			w := planning.Week(events, selected, now)
			resp.Week = &w
		case ViewDay:
			day := planning.Day(events, resp.Date, now)
			resp.Day = &day
		default:
			m := planning.Month(events, resp.Date)
			resp.Month = &m
		}

		c.JSON(http.StatusOK, resp)
	}
}

// CalendarEntryCreate - POST /api/calendar; без end_time запись длится час
func CalendarEntryCreate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.CalendarEntryForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgRequiredFields)
			return
		}
		entry, err := validation.CalendarEntry(form)
		if err != nil {
			d.respondError(c, err)
			return
		}

		created, err := d.Store.CreateCalendarEntry(c.Request.Context(), currentUserID(c), entry)
		if err != nil {
			d.respondError(c, err)
			return
		}
		ev, _ := planning.Project(planning.CalendarEntry{CalendarEntry: *created}, d.now())
		c.JSON(http.StatusCreated, ev)
	}
}

func CalendarEntryDelete(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Store.DeleteCalendarEntry(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
			d.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
