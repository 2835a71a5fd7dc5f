package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corail-backend/internal/format"
	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/services"
	"corail-backend/internal/store"
	"corail-backend/internal/utils"
	"corail-backend/internal/validation"
)

type profileResponse struct {
	*models.User
	Credits int `json:"credits"`
}

func UserGetProfile(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		// Служебный токен администратора не привязан к пользователю
		if c.GetString(middleware.ContextRole) == utils.RoleAdmin && middleware.CurrentUser(c) == nil {
			c.JSON(http.StatusOK, profileResponse{User: &models.User{
				ID:                 userID,
				FullName:           "Admin",
				IsAdmin:            true,
				VerificationStatus: models.VerificationVerified,
			}})
			return
		}

		user, err := d.Store.GetUser(c.Request.Context(), userID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		credits, err := d.Store.Credits(c.Request.Context(), userID)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profileResponse{User: user, Credits: credits})
	}
}

func UserUpdateProfile(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd store.ProfileUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, "Données invalides")
			return
		}
		if upd.FullName != nil {
			name := strings.TrimSpace(*upd.FullName)
			if name == "" {
				badRequest(c, "Veuillez entrer votre nom complet")
				return
			}
			upd.FullName = &name
		}

		user, err := d.Store.UpdateProfile(c.Request.Context(), currentUserID(c), upd)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type fcmTokenRequest struct {
	Token string `json:"fcm_token" binding:"required"`
}

// UserUpdateFCMToken - токен устройства для push уведомлений
func UserUpdateFCMToken(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fcmTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Token FCM manquant")
			return
		}
		if err := d.Store.UpdateFCMToken(c.Request.Context(), currentUserID(c), req.Token); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Token FCM mis à jour"})
	}
}

// VerificationSubmit - POST /api/verification, переводит водителя в PENDING
func VerificationSubmit(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.VerificationForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgRequiredFields)
			return
		}
		if err := validation.Verification(&form); err != nil {
			d.respondError(c, err)
			return
		}

		user, err := d.Store.SubmitVerification(c.Request.Context(), currentUserID(c), store.VerificationInput{
			FullName:               form.FullName,
			Phone:                  form.Phone,
			ProfessionalCardNumber: form.ProfessionalCardNumber,
			Siren:                  form.Siren,
		})
		if err != nil {
			d.respondError(c, err)
			return
		}

		d.Logger.Info("Заявка на верификацию", zap.String("user_id", user.ID))
		c.JSON(http.StatusOK, user)
	}
}

// UserProfileQRCode - PNG с vCard водителя, ?size=128..1024
func UserProfileQRCode(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := d.Store.GetUser(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		size, _ := strconv.Atoi(c.Query("size"))
		if size < 128 || size > 1024 {
			size = 0
		}
		png, err := services.ProfileQRCode(user, size)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

func CreditsGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		credits, err := d.Store.Credits(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"credits": credits})
	}
}

// CreditHistory - журнал кредитов, новые сначала
func CreditHistory(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := d.Store.CreditHistory(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 50, 200))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// ActivityList - GET /api/activity?limit=10, записи с подписями для ленты
func ActivityList(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := d.Store.RecentActivity(c.Request.Context(), currentUserID(c), queryInt(c, "limit", 10, 100))
		if err != nil {
			d.respondError(c, err)
			return
		}

		now := d.now()
		items := make([]models.ActivityItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, models.ActivityItem{
				ActivityEntry: e,
				Display:       format.DescribeActivity(e),
				RelativeTime:  format.RelativeTime(e.CreatedAt, now),
			})
		}
		c.JSON(http.StatusOK, items)
	}
}
