// Package planning сводит календарные записи, взятые поездки маркетплейса и личные
// поездки водителя в единый список событий и строит по нему виды месяц/неделя/день.
//
// Время хранится как "2006-01-02 15:04:05" в UTC; дата и час берутся срезом строки.
package planning

import (
	"fmt"
	"time"

	"corail-backend/internal/format"
	"corail-backend/internal/models"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"

	DefaultDuration = 60 * time.Minute

	ColorPast        = "#64748b"
	ColorMarketplace = "#ff6b47"
	ColorSelected    = "#ff6b47"
)

// Event - единая запись календаря для отображения; не сохраняется в БД
type Event struct {
	ID           string           `json:"id"`
	EventType    models.EventType `json:"event_type"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	StartAddress string           `json:"start_address"`
	EndAddress   string           `json:"end_address"`
	RideSource   string           `json:"ride_source,omitempty"`
	Status       string           `json:"status"`
	StatusLabel  string           `json:"status_label"`
	Notes        string           `json:"notes,omitempty"`
	Color        string           `json:"color"`
	Label        string           `json:"label"`
	Icon         string           `json:"icon"`
	TimeLabel    string           `json:"time_label"`
	IsPast       bool             `json:"is_past"`
}

// Date - ключ дня "YYYY-MM-DD"
func (e Event) Date() string {
	if len(e.StartTime) < 10 {
		return ""
	}
	return e.StartTime[:10]
}

// Source - один из трех источников событий календаря.
// Реализации: MarketplaceRide, PersonalRide, CalendarEntry.
type Source interface {
	project(now time.Time) (Event, bool)
}

type MarketplaceRide struct {
	models.Ride
}

type PersonalRide struct {
	models.PersonalRide
}

type CalendarEntry struct {
	models.CalendarEntry
}

// Project приводит источник к Event. false - источник не попадает в календарь.
func Project(src Source, now time.Time) (Event, bool) {
	return src.project(now)
}

// Aggregate проецирует источники в исходном порядке
func Aggregate(now time.Time, sources ...[]Source) []Event {
	events := make([]Event, 0)
	for _, group := range sources {
		for _, src := range group {
			if ev, ok := src.project(now); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

func FromRides(rides []models.Ride) []Source {
	out := make([]Source, 0, len(rides))
	for _, r := range rides {
		out = append(out, MarketplaceRide{r})
	}
	return out
}

func FromPersonalRides(rides []models.PersonalRide) []Source {
	out := make([]Source, 0, len(rides))
	for _, r := range rides {
		out = append(out, PersonalRide{r})
	}
	return out
}

func FromCalendarEntries(entries []models.CalendarEntry) []Source {
	out := make([]Source, 0, len(entries))
	for _, e := range entries {
		out = append(out, CalendarEntry{e})
	}
	return out
}

// EndTime = начало + длительность; без длительности - 60 минут
func EndTime(start time.Time, durationMinutes *int) time.Time {
	if durationMinutes == nil || *durationMinutes <= 0 {
		return start.Add(DefaultDuration)
	}
	return start.Add(time.Duration(*durationMinutes) * time.Minute)
}

func stamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (r MarketplaceRide) project(now time.Time) (Event, bool) {
	if r.ScheduledAt == nil {
		return Event{}, false
	}
	if r.Status != models.RideStatusClaimed && r.Status != models.RideStatusCompleted {
		return Event{}, false
	}

	start := *r.ScheduledAt
	past := start.Before(now)
	color := ColorMarketplace
	if past {
		color = ColorPast
	}
	notes := "Course Corail"
	if r.Status == models.RideStatusCompleted {
		notes = "Course Corail (terminée)"
	}

	return finish(Event{
		ID:           "marketplace-" + r.ID,
		EventType:    models.EventTypeRide,
		StartTime:    stamp(start),
		EndTime:      stamp(EndTime(start, r.DurationMinutes)),
		StartAddress: r.PickupAddress,
		EndAddress:   r.DropoffAddress,
		RideSource:   string(models.SourceMarketplace),
		Status:       string(r.Status),
		Notes:        notes,
		Color:        color,
		IsPast:       past,
	}), true
}

func personalColor(source models.RideSource) string {
	switch source {
	case models.SourceUber:
		return "#000000"
	case models.SourceBolt:
		return "#34d399"
	case models.SourceDirectClient:
		return "#8b5cf6"
	}
	return "#6366f1"
}

func (r PersonalRide) project(now time.Time) (Event, bool) {
	if r.ScheduledAt == nil || r.Status != models.PersonalRideScheduled {
		return Event{}, false
	}

	start := *r.ScheduledAt
	past := start.Before(now)
	color := personalColor(r.Source)
	if past {
		color = ColorPast
	}
	source := r.Source
	if source == "" {
		source = models.SourceOther
	}

	return finish(Event{
		ID:           "personal-" + r.ID,
		EventType:    models.EventTypeRide,
		StartTime:    stamp(start),
		EndTime:      stamp(EndTime(start, r.DurationMinutes)),
		StartAddress: r.PickupAddress,
		EndAddress:   r.DropoffAddress,
		RideSource:   string(source),
		Status:       string(r.Status),
		Notes:        fmt.Sprintf("Course %s", source),
		Color:        color,
		IsPast:       past,
	}), true
}

func (e CalendarEntry) project(now time.Time) (Event, bool) {
	color := e.Color
	if color == "" {
		color = TypeColor(e.EventType)
	}
	return finish(Event{
		ID:           e.ID,
		EventType:    e.EventType,
		StartTime:    stamp(e.StartTime),
		EndTime:      stamp(e.EndTime),
		StartAddress: e.StartAddress,
		EndAddress:   e.EndAddress,
		RideSource:   e.RideSource,
		Status:       e.Status,
		Notes:        e.Notes,
		Color:        color,
		IsPast:       e.StartTime.Before(now),
	}), true
}

// finish заполняет производные подписи
func finish(ev Event) Event {
	ev.Label = Label(ev.EventType, ev.RideSource)
	ev.Icon = Icon(ev.EventType, ev.RideSource)
	ev.StatusLabel = StatusLabel(ev.Status)
	ev.TimeLabel = format.TimeOfDay(ev.StartTime)
	return ev
}
