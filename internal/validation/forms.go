package validation

import (
	"strings"
	"time"

	"corail-backend/internal/format"
	"corail-backend/internal/models"
)

const (
	MsgRequiredFields   = "Veuillez remplir tous les champs obligatoires"
	MsgGroupRequired    = "Veuillez sélectionner au moins un groupe"
	MsgInvalidPrice     = "Veuillez saisir un prix valide"
	MsgInvalidVehicle   = "Type de véhicule invalide"
	MsgInvalidVisible   = "Visibilité invalide"
	MsgReasonRequired   = "Veuillez indiquer une raison"
	MsgInvalidReview    = "Statut de vérification invalide"
	MsgInvalidSource    = "Source de course invalide"
	MsgInvalidEventType = "Type d'événement invalide"
	MsgInvalidTimeRange = "L'heure de fin doit être après l'heure de début"
	MsgGroupName        = "Veuillez saisir le nom du groupe"
	MsgInviteCode       = "Veuillez saisir un code d'invitation"
)

// RideForm - форма создания поездки маркетплейса
type RideForm struct {
	PickupAddress     string                `json:"pickup_address"`
	DropoffAddress    string                `json:"dropoff_address"`
	Price             string                `json:"price"`
	PriceCents        *int64                `json:"price_cents"`
	ScheduledAt       *time.Time            `json:"scheduled_at"`
	Visibility        models.RideVisibility `json:"visibility"`
	GroupID           *string               `json:"group_id"`
	GroupIDs          []string              `json:"group_ids"`
	VehicleType       models.VehicleType    `json:"vehicle_type"`
	DistanceKm        *float64              `json:"distance_km"`
	DurationMinutes   *int                  `json:"duration_minutes"`
	CommissionEnabled bool                  `json:"commission_enabled"`
}

// Ride проверяет форму и собирает поездку без создателя и статуса.
// Поездка в группу привязывается к первой выбранной группе.
func Ride(f RideForm) (*models.Ride, error) {
	trim(&f.PickupAddress, &f.DropoffAddress, &f.Price)

	if f.PickupAddress == "" || f.DropoffAddress == "" || (f.Price == "" && f.PriceCents == nil) {
		return nil, newError("price", MsgRequiredFields)
	}

	var cents int64
	if f.Price != "" {
		parsed, err := format.ParsePriceCents(f.Price)
		if err != nil {
			return nil, newError("price", MsgInvalidPrice)
		}
		cents = parsed
	} else {
		cents = *f.PriceCents
	}
	if cents < 0 {
		return nil, newError("price", MsgInvalidPrice)
	}

	if f.Visibility == "" {
		f.Visibility = models.VisibilityPublic
	}
	if !f.Visibility.Valid() {
		return nil, newError("visibility", MsgInvalidVisible)
	}
	if f.VehicleType == "" {
		f.VehicleType = models.VehicleStandard
	}
	if !f.VehicleType.Valid() {
		return nil, newError("vehicle_type", MsgInvalidVehicle)
	}

	var groupID *string
	if f.GroupID != nil && strings.TrimSpace(*f.GroupID) != "" {
		id := strings.TrimSpace(*f.GroupID)
		groupID = &id
	} else {
		for _, id := range f.GroupIDs {
			if id = strings.TrimSpace(id); id != "" {
				groupID = &id
				break
			}
		}
	}
	if f.Visibility == models.VisibilityGroup && groupID == nil {
		return nil, newError("group_ids", MsgGroupRequired)
	}
	if f.Visibility != models.VisibilityGroup {
		groupID = nil
	}

	var scheduled *time.Time
	if f.ScheduledAt != nil {
		t := f.ScheduledAt.UTC()
		scheduled = &t
	}

	return &models.Ride{
		PickupAddress:     f.PickupAddress,
		DropoffAddress:    f.DropoffAddress,
		ScheduledAt:       scheduled,
		PriceCents:        cents,
		Visibility:        f.Visibility,
		GroupID:           groupID,
		VehicleType:       f.VehicleType,
		DistanceKm:        f.DistanceKm,
		DurationMinutes:   f.DurationMinutes,
		CommissionEnabled: f.CommissionEnabled,
	}, nil
}

// VerificationForm - данные для проверки водителя
type VerificationForm struct {
	FullName               string `json:"full_name" validate:"required"`
	Phone                  string `json:"phone" validate:"required"`
	ProfessionalCardNumber string `json:"professional_card_number" validate:"required"`
	Siren                  string `json:"siren" validate:"required,siren"`
}

var verificationMessages = map[string]string{
	"full_name":                "Veuillez entrer votre nom complet",
	"phone":                    "Veuillez entrer votre numéro de téléphone",
	"professional_card_number": "Veuillez entrer votre numéro de carte professionnelle VTC",
	"siren":                    "Le numéro SIREN doit contenir 9 chiffres",
}

func Verification(f *VerificationForm) error {
	trim(&f.FullName, &f.Phone, &f.ProfessionalCardNumber, &f.Siren)
	return check(f, verificationMessages)
}

// QuoteForm - форма коммерческого предложения клиенту
type QuoteForm struct {
	ClientName      string `json:"client_name" validate:"required"`
	ClientPhone     string `json:"client_phone" validate:"required"`
	PickupAddress   string `json:"pickup_address" validate:"required"`
	DropoffAddress  string `json:"dropoff_address" validate:"required"`
	Price           string `json:"price" validate:"required,eurodecimal"`
	ScheduledDate   string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime   string `json:"scheduled_time" validate:"omitempty,datetime=15:04:05"`
	Notes           string `json:"notes"`
	SendViaWhatsApp bool   `json:"send_via_whatsapp"`
}

var quoteMessages = map[string]string{
	"client_name":     "Veuillez saisir le nom du client",
	"client_phone":    "Veuillez saisir le téléphone du client",
	"pickup_address":  "Veuillez saisir l'adresse de départ",
	"dropoff_address": "Veuillez saisir l'adresse d'arrivée",
	"price":           MsgInvalidPrice,
	"scheduled_date":  "Date invalide",
	"scheduled_time":  "Heure invalide",
}

// Quote проверяет форму и возвращает цену в центах
func Quote(f *QuoteForm) (int64, error) {
	trim(&f.ClientName, &f.ClientPhone, &f.PickupAddress, &f.DropoffAddress, &f.Price, &f.ScheduledDate, &f.ScheduledTime)
	// "14:30" от клиента дополняем секундами
	if len(f.ScheduledTime) == 5 {
		f.ScheduledTime += ":00"
	}
	if err := check(f, quoteMessages); err != nil {
		return 0, err
	}
	cents, _ := format.ParsePriceCents(f.Price)
	return cents, nil
}

// ReviewForm - решение администратора по верификации
type ReviewForm struct {
	Status          models.VerificationStatus `json:"status"`
	RejectionReason string                    `json:"rejection_reason"`
}

func Review(f *ReviewForm) error {
	trim(&f.RejectionReason)
	switch f.Status {
	case models.VerificationVerified:
		f.RejectionReason = ""
		return nil
	case models.VerificationRejected:
		if f.RejectionReason == "" {
			return newError("rejection_reason", MsgReasonRequired)
		}
		return nil
	}
	return newError("status", MsgInvalidReview)
}

// PersonalRideForm - запись в личный журнал поездок
type PersonalRideForm struct {
	Source          models.RideSource         `json:"source"`
	PickupAddress   string                    `json:"pickup_address"`
	DropoffAddress  string                    `json:"dropoff_address"`
	ScheduledAt     *time.Time                `json:"scheduled_at"`
	Price           string                    `json:"price"`
	PriceCents      *int64                    `json:"price_cents"`
	DistanceKm      *float64                  `json:"distance_km"`
	DurationMinutes *int                      `json:"duration_minutes"`
	ClientName      string                    `json:"client_name"`
	ClientPhone     string                    `json:"client_phone"`
	Notes           string                    `json:"notes"`
	Status          models.PersonalRideStatus `json:"status"`
}

func PersonalRide(f PersonalRideForm) (*models.PersonalRide, error) {
	trim(&f.PickupAddress, &f.DropoffAddress, &f.Price, &f.ClientName, &f.ClientPhone, &f.Notes)

	if f.PickupAddress == "" || f.DropoffAddress == "" {
		return nil, newError("pickup_address", MsgRequiredFields)
	}
	if f.Source == "" {
		f.Source = models.SourceOther
	}
	if !f.Source.Valid() {
		return nil, newError("source", MsgInvalidSource)
	}

	var cents *int64
	switch {
	case f.Price != "":
		parsed, err := format.ParsePriceCents(f.Price)
		if err != nil || parsed < 0 {
			return nil, newError("price", MsgInvalidPrice)
		}
		cents = &parsed
	case f.PriceCents != nil:
		if *f.PriceCents < 0 {
			return nil, newError("price", MsgInvalidPrice)
		}
		cents = f.PriceCents
	}

	switch f.Status {
	case "":
		f.Status = models.PersonalRideCompleted
	case models.PersonalRideScheduled, models.PersonalRideCompleted, models.PersonalRideCancelled:
	default:
		return nil, newError("status", "Statut invalide")
	}

	var scheduled *time.Time
	if f.ScheduledAt != nil {
		t := f.ScheduledAt.UTC()
		scheduled = &t
	}

	return &models.PersonalRide{
		Source:          f.Source,
		PickupAddress:   f.PickupAddress,
		DropoffAddress:  f.DropoffAddress,
		ScheduledAt:     scheduled,
		PriceCents:      cents,
		DistanceKm:      f.DistanceKm,
		DurationMinutes: f.DurationMinutes,
		ClientName:      f.ClientName,
		ClientPhone:     f.ClientPhone,
		Notes:           f.Notes,
		Status:          f.Status,
	}, nil
}

// CalendarEntryForm - ручная запись в планинге
type CalendarEntryForm struct {
	EventType    models.EventType `json:"event_type"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      *time.Time       `json:"end_time"`
	StartAddress string           `json:"start_address"`
	EndAddress   string           `json:"end_address"`
	RideSource   string           `json:"ride_source"`
	Notes        string           `json:"notes"`
	Color        string           `json:"color"`
}

// CalendarEntry: без end_time запись длится час
func CalendarEntry(f CalendarEntryForm) (*models.CalendarEntry, error) {
	if !f.EventType.Valid() {
		return nil, newError("event_type", MsgInvalidEventType)
	}
	if f.StartTime.IsZero() {
		return nil, newError("start_time", MsgRequiredFields)
	}
	start := f.StartTime.UTC()
	end := start.Add(time.Hour)
	if f.EndTime != nil {
		end = f.EndTime.UTC()
	}
	if !end.After(start) {
		return nil, newError("end_time", MsgInvalidTimeRange)
	}

	return &models.CalendarEntry{
		EventType:    f.EventType,
		StartTime:    start,
		EndTime:      end,
		StartAddress: strings.TrimSpace(f.StartAddress),
		EndAddress:   strings.TrimSpace(f.EndAddress),
		RideSource:   f.RideSource,
		Notes:        strings.TrimSpace(f.Notes),
		Color:        f.Color,
	}, nil
}
