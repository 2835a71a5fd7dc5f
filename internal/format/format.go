// Package format содержит функции отображения: цены, относительное время,
// подписи ленты активности.
package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidPrice = errors.New("invalid price")

var (
	frenchMonths = [...]string{
		"janv.", "févr.", "mars", "avr.", "mai", "juin",
		"juil.", "août", "sept.", "oct.", "nov.", "déc.",
	}
	frenchMonthsLong = [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
	frenchWeekdaysLong = [...]string{
		"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
	}
)

// FormatPrice: 2800 -> "28.00€"
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%.2f€", float64(cents)/100)
}

// ParsePriceCents переводит строку в евро в центы.
// Округление floor(x*100 + 0.5): "28.005" дает 2800, так как 28.005*100 = 2800.4999...
func ParsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidPrice
	}
	return int64(math.Floor(f*100 + 0.5)), nil
}

// RelativeTime возвращает "Il y a 5 min", "Hier" и т.п.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(math.Floor(diff.Minutes()))
	hours := int(math.Floor(diff.Hours()))
	days := int(math.Floor(diff.Hours() / 24))

	switch {
	case mins < 1:
		return "À l'instant"
	case mins < 60:
		return fmt.Sprintf("Il y a %d min", mins)
	case hours < 24:
		return fmt.Sprintf("Il y a %dh", hours)
	case days == 1:
		return "Hier"
	case days < 7:
		return fmt.Sprintf("Il y a %d jours", days)
	}
	return ShortDate(t)
}

// ShortDate: "2 janv., 14:30"
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d %s, %02d:%02d", t.Day(), frenchMonths[t.Month()-1], t.Hour(), t.Minute())
}

// LongDate: "lundi 10 mars 2025 à 14:30"
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d à %02d:%02d",
		frenchWeekdaysLong[t.Weekday()], t.Day(), frenchMonthsLong[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// DayMonth: "2/1" - дата в сообщениях смет
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
}

// TimeOfDay вырезает HH:MM из "2006-01-02 15:04:05"
func TimeOfDay(ts string) string {
	if len(ts) < 16 {
		return ""
	}
	return ts[11:16]
}
