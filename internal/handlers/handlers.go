// Package handlers - HTTP обработчики API. Каждый обработчик - замыкание над Deps,
// ошибки отдаются в виде {"error": "..."} с сообщением на французском.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"corail-backend/internal/config"
	"corail-backend/internal/events"
	"corail-backend/internal/format"
	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/services"
	"corail-backend/internal/store"
	"corail-backend/internal/validation"
	"corail-backend/internal/websocket"
)

const MsgInternalError = "Erreur interne du serveur"

// Deps - зависимости обработчиков
type Deps struct {
	Store         *store.Store
	Badges        *services.BadgeService
	Notifications *services.NotificationService
	WhatsApp      *services.WhatsAppService
	Hub           *websocket.Manager
	Events        events.Publisher
	Redis         *redis.Client
	Config        *config.Config
	Logger        *zap.Logger
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// statusMessages - сентинелы store и их HTTP ответ
var statusMessages = []struct {
	err     error
	status  int
	message string
}{
	{store.ErrNotFound, http.StatusNotFound, "Ressource introuvable"},
	{store.ErrForbidden, http.StatusForbidden, "Action non autorisée"},
	{store.ErrRideNotAvailable, http.StatusConflict, "Cette course n'est plus disponible"},
	{store.ErrOwnRide, http.StatusBadRequest, "Vous ne pouvez pas prendre votre propre course"},
	{store.ErrInsufficientCredits, http.StatusPaymentRequired, "Crédits insuffisants"},
	{store.ErrInvalidTransition, http.StatusConflict, "Cette action n'est pas possible dans l'état actuel de la course"},
	{store.ErrAlreadyReviewed, http.StatusConflict, "Cette demande a déjà été traitée"},
	{store.ErrAlreadyResponded, http.StatusConflict, "Ce devis a déjà reçu une réponse"},
	{store.ErrAlreadyMember, http.StatusConflict, "Vous êtes déjà membre de ce groupe"},
}

// respondError переводит ошибку в HTTP ответ; неизвестные ошибки логируются
func (d *Deps) respondError(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	for _, m := range statusMessages {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}
	d.Logger.Error("Ошибка обработки запроса",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(middleware.ContextRequestID)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": MsgInternalError})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// background - контекст для побочных эффектов после ответа: не отменяется вместе с запросом
func background(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func queryInt(c *gin.Context, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func toRideResponse(r *models.Ride) models.RideResponse {
	return models.RideResponse{
		ID:                 r.ID,
		CreatorID:          r.CreatorID,
		PickerID:           r.PickerID,
		GroupID:            r.GroupID,
		PickupAddress:      r.PickupAddress,
		DropoffAddress:     r.DropoffAddress,
		ScheduledAt:        r.ScheduledAt,
		PriceCents:         r.PriceCents,
		PriceLabel:         format.FormatPrice(r.PriceCents),
		Status:             r.Status,
		Visibility:         r.Visibility,
		VehicleType:        r.VehicleType,
		DistanceKm:         r.DistanceKm,
		DurationMinutes:    r.DurationMinutes,
		CommissionEnabled:  r.CommissionEnabled,
		CompletedAt:        r.CompletedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Creator:            r.Creator.Summary(),
		Picker:             r.Picker.Summary(),
	}
}

func toRideResponses(rides []models.Ride) []models.RideResponse {
	out := make([]models.RideResponse, 0, len(rides))
	for i := range rides {
		out = append(out, toRideResponse(&rides[i]))
	}
	return out
}

// afterActivity - значки и баланс после операции, пишущей в журнал действий
func (d *Deps) afterActivity(ctx context.Context, userID string) {
	if d.Badges != nil {
		if _, err := d.Badges.Evaluate(ctx, userID); err != nil {
			d.Logger.Warn("Ошибка пересчета значков", zap.String("user_id", userID), zap.Error(err))
		}
	}
	d.pushCredits(ctx, userID)
}

// pushCredits отправляет новый баланс по WebSocket и предупреждает о малом остатке
func (d *Deps) pushCredits(ctx context.Context, userID string) {
	credits, err := d.Store.Credits(ctx, userID)
	if err != nil {
		d.Logger.Warn("Не удалось получить баланс", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if d.Hub != nil {
		d.Hub.SendCreditsUpdate(userID, credits)
	}
	if d.Notifications != nil {
		d.Notifications.LowCredits(ctx, userID, credits)
	}
}

func (d *Deps) publish(ctx context.Context, event string, ride *models.Ride) {
	if d.Events == nil {
		return
	}
	if err := d.Events.PublishRide(ctx, event, ride); err != nil {
		d.Logger.Warn("Не удалось опубликовать событие поездки",
			zap.String("event", event), zap.String("ride_id", ride.ID), zap.Error(err))
	}
}
