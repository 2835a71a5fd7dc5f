package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func NotificationPreferencesGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs, err := d.Notifications.Preferences(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, prefs)
	}
}

// NotificationPreferencesUpdate - частичное обновление: отсутствующие поля не меняются
func NotificationPreferencesUpdate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		prefs, err := d.Notifications.Preferences(c.Request.Context(), userID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		if err := c.ShouldBindJSON(&prefs); err != nil {
			badRequest(c, "Préférences invalides")
			return
		}
		if err := d.Notifications.SavePreferences(c.Request.Context(), userID, prefs); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, prefs)
	}
}

// NotificationTest - тестовый push на устройство текущего пользователя
func NotificationTest(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sent, err := d.Notifications.Test(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		if !sent {
			c.JSON(http.StatusOK, gin.H{"sent": false, "message": "Notifications désactivées ou appareil non enregistré"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sent": true, "message": "Notification envoyée"})
	}
}
