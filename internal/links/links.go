// Package links строит внешние ссылки (карты, WhatsApp) и тексты для отправки
package links

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"corail-backend/internal/format"
	"corail-backend/internal/models"
)

// символы, которые encodeURIComponent оставляет как есть
var uriUnreserved = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// encode кодирует компонент так же, как encodeURIComponent
func encode(s string) string {
	return uriUnreserved.Replace(url.QueryEscape(s))
}

func GoogleMaps(pickup, dropoff string) string {
	return "https://www.google.com/maps/dir/" + encode(pickup) + "/" + encode(dropoff)
}

func Waze(pickup string) string {
	return "https://waze.com/ul?ll=" + encode(pickup) + "&navigate=yes"
}

func AppleMaps(pickup, dropoff string) string {
	return "http://maps.apple.com/?saddr=" + encode(pickup) + "&daddr=" + encode(dropoff)
}

var phoneNoise = regexp.MustCompile(`[\s\-\(\)]`)

// CleanPhone убирает пробелы, дефисы и скобки: "+33 (6) 12-34" -> "+3361234"
func CleanPhone(phone string) string {
	return phoneNoise.ReplaceAllString(phone, "")
}

// PhoneDigits оставляет только цифры
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsApp - веб-ссылка wa.me
func WhatsApp(phone, text string) string {
	return "https://wa.me/" + PhoneDigits(phone) + "?text=" + encode(text)
}

// WhatsAppApp - ссылка на приложение
func WhatsAppApp(phone, text string) string {
	return "whatsapp://send?phone=" + CleanPhone(phone) + "&text=" + encode(text)
}

type RideLinks struct {
	GoogleMaps   string `json:"google_maps"`
	Waze         string `json:"waze"`
	AppleMaps    string `json:"apple_maps"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	ShareMessage string `json:"share_message"`
}

// ForRide собирает ссылки навигации, контакт создателя и текст для отправки
func ForRide(ride models.Ride) RideLinks {
	out := RideLinks{
		GoogleMaps:   GoogleMaps(ride.PickupAddress, ride.DropoffAddress),
		Waze:         Waze(ride.PickupAddress),
		AppleMaps:    AppleMaps(ride.PickupAddress, ride.DropoffAddress),
		ShareMessage: ShareMessage(ride),
	}
	if ride.Creator != nil && PhoneDigits(ride.Creator.Phone) != "" {
		out.WhatsApp = WhatsApp(ride.Creator.Phone, ContactMessage(ride))
	}
	return out
}

// ContactMessage - первое сообщение создателю поездки
func ContactMessage(ride models.Ride) string {
	name := ""
	if ride.Creator != nil {
		name = ride.Creator.FullName
	}
	return "Bonjour " + name + ", je suis intéressé par votre course : " +
		ride.PickupAddress + " → " + ride.DropoffAddress
}

// ShareMessage - текст карточки поездки для отправки в мессенджеры
func ShareMessage(ride models.Ride) string {
	var b strings.Builder
	b.WriteString("🪸 Course Corail VTC\n\n")
	b.WriteString("📍 " + ride.PickupAddress + "\n")
	b.WriteString("📍 " + ride.DropoffAddress + "\n\n")
	b.WriteString("💰 " + format.FormatPrice(ride.PriceCents) + "\n")
	date := ""
	if ride.ScheduledAt != nil {
		date = format.LongDate(*ride.ScheduledAt)
	}
	b.WriteString("📅 " + date + "\n\n")
	if ride.Creator != nil && ride.Creator.FullName != "" {
		b.WriteString("👤 Proposé par " + ride.Creator.FullName + "\n")
	}
	if ride.Visibility == models.VisibilityGroup {
		b.WriteString("👥 Réservé au groupe\n")
	} else {
		b.WriteString("🌍 Public\n")
	}
	b.WriteString("\n✨ Téléchargez Corail VTC pour réserver !")
	return b.String()
}

// QuoteURL - публичная страница сметы
func QuoteURL(baseURL, token string) string {
	return baseURL + token
}

// QuoteMessage - сообщение клиенту со ссылкой на смету.
// Дата и время берутся из полей сметы (YYYY-MM-DD, HH:MM:SS).
func QuoteMessage(q models.Quote, quoteURL string) string {
	when := ""
	if d, err := time.Parse("2006-01-02", q.ScheduledDate); err == nil {
		when = format.DayMonth(d)
	}
	hm := ""
	if len(q.ScheduledTime) >= 5 {
		hm = q.ScheduledTime[:2] + "h" + q.ScheduledTime[3:5]
	}
	return "Bonjour,\nVoici votre devis VTC pour le " + when + " à " + hm + ".\n" +
		"Montant : " + priceEuros(q.PriceCents) + " €.\n\n" +
		"👉 Consulter et valider :\n" + quoteURL
}

// priceEuros: 4500 -> "45", 4550 -> "45.50"
func priceEuros(cents int64) string {
	s := format.FormatPrice(cents)
	s = strings.TrimSuffix(s, "€")
	return strings.TrimSuffix(s, ".00")
}
