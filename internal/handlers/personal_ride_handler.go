package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"corail-backend/internal/models"
	"corail-backend/internal/validation"
)

func PersonalRideList(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.PersonalRideStatus(c.Query("status"))
		limit := queryInt(c, "limit", 50, 200)

		rides, err := d.Store.ListPersonalRides(c.Request.Context(), currentUserID(c), status, limit)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rides)
	}
}

// PersonalRideCreate - запись в журнал поездок вне маркетплейса (Uber, Bolt, клиент)
func PersonalRideCreate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.PersonalRideForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgRequiredFields)
			return
		}
		ride, err := validation.PersonalRide(form)
		if err != nil {
			d.respondError(c, err)
			return
		}

		userID := currentUserID(c)
		created, err := d.Store.CreatePersonalRide(c.Request.Context(), userID, ride)
		if err != nil {
			d.respondError(c, err)
			return
		}
		d.afterActivity(background(c), userID)

		c.JSON(http.StatusCreated, created)
	}
}

func PersonalRideStats(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := d.Store.PersonalRideStats(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
