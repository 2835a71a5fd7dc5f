package format

import (
	"strings"

	"corail-backend/internal/models"
)

type activityStyle struct {
	icon     string
	color    string
	title    string
	fallback string
	badge    func(e models.ActivityEntry) string
}

func priceBadge(e models.ActivityEntry) string {
	if e.PriceCents > 0 {
		return FormatPrice(e.PriceCents)
	}
	return ""
}

func noBadge(models.ActivityEntry) string { return "" }

var activityStyles = map[string]activityStyle{
	models.ActionRidePublishedPublic:   {"megaphone", "#0ea5e9", "Course publiée sur la marketplace", "Course publique", priceBadge},
	models.ActionRidePublishedGroup:    {"people", "#a855f7", "Course publiée dans un groupe", "Course groupe", priceBadge},
	models.ActionRidePublishedPersonal: {"lock-closed", "#6366f1", "Course personnelle créée", "Course privée", noBadge},
	models.ActionRideClaimed: {"car-sport", "#ff6b47", "Course prise", "Course réclamée", func(models.ActivityEntry) string {
		return "-1 [C]"
	}},
	models.ActionRideCompleted: {"checkmark-circle", "#10b981", "Course terminée", "Course complétée", func(e models.ActivityEntry) string {
		if e.RideVisibility.IsMarketplace() {
			return "+1 [C]"
		}
		return ""
	}},
	models.ActionPersonalRideAdded: {"document-text", "#6366f1", "Course personnelle enregistrée", "Course privée ajoutée", priceBadge},
	models.ActionRidePublished:     {"megaphone", "#0ea5e9", "Course publiée", "Nouvelle course", priceBadge},
	models.ActionRideCreated:       {"add-circle", "#10b981", "Course créée", "Nouvelle course", priceBadge},
	models.ActionRideUpdated:       {"create", "#f59e0b", "Course modifiée", "Course mise à jour", noBadge},
	models.ActionRideCancelled:     {"close-circle", "#ef4444", "Course annulée", "Course annulée", noBadge},
}

// DescribeActivity строит отображение записи ленты по её action_type
func DescribeActivity(e models.ActivityEntry) models.ActivityDisplay {
	// Удаленная поездка всегда без адресов
	if e.ActionType == models.ActionRideDeleted {
		return models.ActivityDisplay{
			Icon:     "trash",
			Color:    "#ef4444",
			Title:    "Course supprimée",
			Subtitle: "Course retirée",
		}
	}

	style, ok := activityStyles[e.ActionType]
	if !ok {
		style = activityStyle{
			icon:     "information-circle",
			color:    "#64748b",
			title:    readableAction(e.ActionType),
			fallback: "Action",
			badge:    priceBadge,
		}
	}

	subtitle := style.fallback
	if e.PickupAddress != "" && e.DropoffAddress != "" {
		subtitle = e.PickupAddress + " → " + e.DropoffAddress
	}

	return models.ActivityDisplay{
		Icon:     style.icon,
		Color:    style.color,
		Title:    style.title,
		Subtitle: subtitle,
		Badge:    style.badge(e),
	}
}

// readableAction: "GROUP_JOINED" -> "Group Joined"
func readableAction(action string) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(action, "_", " ")))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
