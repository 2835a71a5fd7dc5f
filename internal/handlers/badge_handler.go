package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"corail-backend/internal/services"
)

// BadgeCollection - GET /api/badges?filter=all|earned|locked
func BadgeCollection(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := c.DefaultQuery("filter", services.BadgeFilterAll)
		switch filter {
		case services.BadgeFilterAll, services.BadgeFilterEarned, services.BadgeFilterLocked:
		default:
			badRequest(c, "Filtre invalide")
			return
		}

		collection, err := d.Badges.Collection(c.Request.Context(), currentUserID(c), filter)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, collection)
	}
}

// UserBadges - заработанные значки любого водителя, новые сначала
func UserBadges(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		if _, err := d.Store.GetUser(c.Request.Context(), userID); err != nil {
			d.respondError(c, err)
			return
		}
		earned, err := d.Badges.Earned(c.Request.Context(), userID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, earned)
	}
}
