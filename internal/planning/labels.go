package planning

import "corail-backend/internal/models"

func TypeColor(t models.EventType) string {
	switch t {
	case models.EventTypeRide:
		return "#ff6b47"
	case models.EventTypeBreak:
		return "#10b981"
	case models.EventTypeMaintenance:
		return "#f59e0b"
	case models.EventTypePersonal:
		return "#8b5cf6"
	}
	return "#64748b"
}

func Icon(t models.EventType, source string) string {
	if t == models.EventTypeRide {
		switch source {
		case "UBER":
			return "logo-uber"
		case "BOLT":
			return "flash"
		case "DIRECT", "DIRECT_CLIENT":
			return "call"
		case "MARKETPLACE":
			return "git-network"
		}
		return "car"
	}
	switch t {
	case models.EventTypeBreak:
		return "cafe"
	case models.EventTypeMaintenance:
		return "construct"
	case models.EventTypePersonal:
		return "person"
	}
	return "calendar"
}

func Label(t models.EventType, source string) string {
	if t == models.EventTypeRide {
		switch source {
		case "UBER":
			return "Uber"
		case "BOLT":
			return "Bolt"
		case "DIRECT", "DIRECT_CLIENT":
			return "Course directe"
		case "MARKETPLACE":
			return "Corail Marketplace"
		}
		return "Course VTC"
	}
	switch t {
	case models.EventTypeBreak:
		return "Pause"
	case models.EventTypeMaintenance:
		return "Entretien"
	case models.EventTypePersonal:
		return "Personnel"
	}
	return "Événement"
}

func StatusLabel(status string) string {
	switch status {
	case "SCHEDULED":
		return "Planifié"
	case "IN_PROGRESS":
		return "En cours"
	case "COMPLETED":
		return "Terminé"
	case "CANCELLED":
		return "Annulé"
	}
	return status
}
