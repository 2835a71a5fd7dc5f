package handlers

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corail-backend/internal/events"
	"corail-backend/internal/links"
	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/store"
	"corail-backend/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RideListMarketplace - GET /api/rides?filter=all|public|groups|my_published&page=1&page_size=20
func RideListMarketplace(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := c.DefaultQuery("filter", store.FilterAll)
		switch filter {
		case store.FilterAll, store.FilterPublic, store.FilterGroups, store.FilterMyPublished:
		default:
			badRequest(c, "Filtre invalide")
			return
		}
		page := queryInt(c, "page", 1, 0)
		pageSize := queryInt(c, "page_size", defaultPageSize, maxPageSize)

		rides, total, err := d.Store.ListMarketplace(c.Request.Context(), currentUserID(c), filter, store.Page{
			Skip:  (page - 1) * pageSize,
			Limit: pageSize,
		})
		if err != nil {
			d.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.RidePage{
			Data:       toRideResponses(rides),
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		})
	}
}

// RideListMine - GET /api/rides/mine?type=claimed|published
func RideListMine(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.DefaultQuery("type", store.MineClaimed)
		if kind != store.MineClaimed && kind != store.MinePublished {
			badRequest(c, "Type invalide")
			return
		}
		rides, err := d.Store.ListMyRides(c.Request.Context(), currentUserID(c), kind)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toRideResponses(rides))
	}
}

func RideGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := d.Store.GetRide(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toRideResponse(ride))
	}
}

// RideCreate публикует поездку. Кредит за публикацию начисляется в той же транзакции,
// оповещения уходят после фиксации.
func RideCreate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.RideForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgRequiredFields)
			return
		}
		ride, err := validation.Ride(form)
		if err != nil {
			d.respondError(c, err)
			return
		}

		userID := currentUserID(c)
		created, err := d.Store.CreateRide(c.Request.Context(), userID, ride)
		if err != nil {
			d.respondError(c, err)
			return
		}
		resp := toRideResponse(created)

		ctx := background(c)
		if created.Visibility.IsMarketplace() {
			d.announceRide(ctx, created, resp)
			d.publish(ctx, events.RidePublished, created)
		}
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusCreated, resp)
	}
}

// announceRide рассылает новую поездку: публичную всем, групповую только участникам группы.
// Контакты создателя в рассылку не попадают.
func (d *Deps) announceRide(ctx context.Context, ride *models.Ride, resp models.RideResponse) {
	payload := resp
	payload.Creator = resp.Creator.WithoutContacts()

	var (
		recipients []string
		err        error
	)
	if ride.Visibility == models.VisibilityGroup {
		if ride.GroupID == nil {
			return
		}
		recipients, err = d.Store.GroupMemberIDs(ctx, *ride.GroupID, ride.CreatorID)
		if err != nil {
			d.Logger.Warn("Не удалось получить участников группы", zap.String("ride_id", ride.ID), zap.Error(err))
			return
		}
		d.Hub.SendNewRideTo(recipients, payload)
	} else {
		d.Hub.SendNewRide(payload)
		recipients, err = d.Store.PushRecipientIDs(ctx, ride.CreatorID)
		if err != nil {
			d.Logger.Warn("Не удалось получить получателей push", zap.String("ride_id", ride.ID), zap.Error(err))
			return
		}
	}
	d.Notifications.NewRides(ctx, recipients, 1)
}

// RideClaim - POST /api/rides/:id/claim, списывает один кредит
func RideClaim(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		ride, err := d.Store.ClaimRide(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx := background(c)
		pickerName := ""
		if ride.Picker != nil {
			pickerName = ride.Picker.FullName
		} else if u := middleware.CurrentUser(c); u != nil {
			pickerName = u.FullName
		}
		d.Hub.SendRideStatusUpdate(ride.CreatorID, ride.ID, string(ride.Status))
		d.Notifications.RideClaimed(ctx, ride, pickerName)
		d.publish(ctx, events.RideClaimed, ride)
		d.afterActivity(ctx, userID)

		d.Logger.Info("Поездка взята", zap.String("ride_id", ride.ID), zap.String("user_id", userID))
		c.JSON(http.StatusOK, toRideResponse(ride))
	}
}

// RideComplete - POST /api/rides/:id/complete
func RideComplete(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		ride, err := d.Store.CompleteRide(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx := background(c)
		if ride.CreatorID != userID {
			d.Hub.SendRideStatusUpdate(ride.CreatorID, ride.ID, string(ride.Status))
		}
		if ride.Visibility.IsMarketplace() {
			d.publish(ctx, events.RideCompleted, ride)
		}
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusOK, toRideResponse(ride))
	}
}

type cancelRideRequest struct {
	Reason string `json:"reason"`
}

// RideCancel - POST /api/rides/:id/cancel; исполнитель получает возврат кредита
func RideCancel(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelRideRequest
		// тело необязательно
		_ = c.ShouldBindJSON(&req)

		userID := currentUserID(c)
		ride, err := d.Store.CancelRide(c.Request.Context(), userID, c.Param("id"), req.Reason)
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx := background(c)
		if ride.PickerID != nil {
			d.Hub.SendRideStatusUpdate(*ride.PickerID, ride.ID, string(ride.Status))
			d.pushCredits(ctx, *ride.PickerID)
		}
		d.publish(ctx, events.RideCancelled, ride)
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusOK, toRideResponse(ride))
	}
}

// RideDelete - DELETE /api/rides/:id
func RideDelete(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		ride, err := d.Store.DeleteRide(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx := background(c)
		d.publish(ctx, events.RideDeleted, ride)
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusOK, gin.H{"message": "Course supprimée", "id": ride.ID})
	}
}

// RideLinks - ссылки навигации, контакт создателя и текст для отправки
func RideLinks(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := d.Store.GetRide(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, links.ForRide(*ride))
	}
}
