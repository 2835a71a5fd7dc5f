package planning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	frenchWeekdays = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}
	frenchMonths   = [...]string{
		"janv.", "févr.", "mars", "avr.", "mai", "juin",
		"juil.", "août", "sept.", "oct.", "nov.", "déc.",
	}
)

type Dot struct {
	Color string `json:"color"`
}

type MarkedDate struct {
	Dots          []Dot  `json:"dots"`
	Selected      bool   `json:"selected,omitempty"`
	SelectedColor string `json:"selected_color,omitempty"`
}

type MonthView struct {
	MarkedDates  map[string]*MarkedDate `json:"marked_dates"`
	EventsByDate map[string][]Event     `json:"events_by_date"`
}

// Month группирует события по дате; на каждое событие одна точка
func Month(events []Event, selected string) MonthView {
	view := MonthView{
		MarkedDates:  make(map[string]*MarkedDate),
		EventsByDate: make(map[string][]Event),
	}

	for _, ev := range events {
		date := ev.Date()
		if date == "" {
			continue
		}
		mark, ok := view.MarkedDates[date]
		if !ok {
			mark = &MarkedDate{Dots: []Dot{}}
			view.MarkedDates[date] = mark
		}
		mark.Dots = append(mark.Dots, Dot{Color: ev.Color})
		view.EventsByDate[date] = append(view.EventsByDate[date], ev)
	}

	if selected != "" {
		mark, ok := view.MarkedDates[selected]
		if !ok {
			mark = &MarkedDate{Dots: []Dot{}}
			view.MarkedDates[selected] = mark
		}
		mark.Selected = true
		mark.SelectedColor = ColorSelected
	}

	return view
}

type WeekDay struct {
	Date       string  `json:"date"`
	DayName    string  `json:"day_name"`
	DayNumber  int     `json:"day_number"`
	IsToday    bool    `json:"is_today"`
	IsSelected bool    `json:"is_selected"`
	Events     []Event `json:"events"`
}

type WeekView struct {
	Title          string    `json:"title"`
	Days           []WeekDay `json:"days"`
	SelectedEvents []Event   `json:"selected_events"`
}

// WeekStart - понедельник недели, в которую попадает day
func WeekStart(day time.Time) time.Time {
	day = truncateDay(day)
	dow := int(day.Weekday())
	diff := 1 - dow
	if dow == 0 {
		diff = -6
	}
	return day.AddDate(0, 0, diff)
}

// Week строит 7 дней с понедельника вокруг выбранной даты
func Week(events []Event, selected, today time.Time) WeekView {
	monday := WeekStart(selected)
	selectedKey := selected.Format(DateLayout)
	todayKey := today.UTC().Format(DateLayout)

	view := WeekView{
		Title: fmt.Sprintf("Semaine du %d %s", monday.Day(), frenchMonths[monday.Month()-1]),
		Days:  make([]WeekDay, 0, 7),
	}
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := day.Format(DateLayout)
		view.Days = append(view.Days, WeekDay{
			Date:       key,
			DayName:    frenchWeekdays[day.Weekday()],
			DayNumber:  day.Day(),
			IsToday:    key == todayKey,
			IsSelected: key == selectedKey,
			Events:     eventsOn(events, key),
		})
	}
	view.SelectedEvents = eventsOn(events, selectedKey)
	return view
}

type HourSlot struct {
	Hour   int     `json:"hour"`
	Label  string  `json:"label"`
	Events []Event `json:"events"`
}

type NowIndicator struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label"`
}

type DayView struct {
	Date  string        `json:"date"`
	Slots []HourSlot    `json:"slots"`
	Now   *NowIndicator `json:"now,omitempty"`
}

// Day раскладывает события дня по часу начала (0-23).
// Событие на несколько часов попадает только в час начала.
func Day(events []Event, date string, now time.Time) DayView {
	view := DayView{Date: date, Slots: make([]HourSlot, 24)}
	for h := range view.Slots {
		view.Slots[h] = HourSlot{Hour: h, Label: fmt.Sprintf("%02d:00", h), Events: []Event{}}
	}

	for _, ev := range eventsOn(events, date) {
		h, ok := startHour(ev)
		if !ok {
			continue
		}
		view.Slots[h].Events = append(view.Slots[h].Events, ev)
	}

	now = now.UTC()
	if date == now.Format(DateLayout) {
		view.Now = &NowIndicator{
			Hour:   now.Hour(),
			Minute: now.Minute(),
			Label:  fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()),
		}
	}
	return view
}

// Window - интервал, покрывающий месяц и неделю выбранной даты
func Window(selected time.Time) (from, to time.Time) {
	selected = truncateDay(selected)
	monthStart := time.Date(selected.Year(), selected.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	weekStart := WeekStart(selected)
	weekEnd := weekStart.AddDate(0, 0, 7)

	from, to = monthStart, monthEnd
	if weekStart.Before(from) {
		from = weekStart
	}
	if weekEnd.After(to) {
		to = weekEnd
	}
	return from, to
}

// InWindow оставляет события, начинающиеся в [from, to)
func InWindow(events []Event, from, to time.Time) []Event {
	lo, hi := from.UTC().Format(TimestampLayout), to.UTC().Format(TimestampLayout)
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.StartTime >= lo && ev.StartTime < hi {
			out = append(out, ev)
		}
	}
	return out
}

func eventsOn(events []Event, date string) []Event {
	out := make([]Event, 0)
	for _, ev := range events {
		if strings.HasPrefix(ev.StartTime, date) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func startHour(ev Event) (int, bool) {
	if len(ev.StartTime) < 13 {
		return 0, false
	}
	h, err := strconv.Atoi(ev.StartTime[11:13])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
