package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corail-backend/internal/validation"
)

// AdminListVerifications - заявки в статусе PENDING, старые сначала
func AdminListVerifications(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, err := d.Store.ListPendingVerifications(c.Request.Context())
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

// AdminReviewVerification - PUT /api/admin/verifications/:userId.
// Повторное решение по той же заявке получает 409.
func AdminReviewVerification(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form validation.ReviewForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, validation.MsgInvalidReview)
			return
		}
		if err := validation.Review(&form); err != nil {
			d.respondError(c, err)
			return
		}

		user, err := d.Store.ReviewVerification(c.Request.Context(), c.Param("userId"), form.Status, form.RejectionReason)
		if err != nil {
			d.respondError(c, err)
			return
		}

		d.Hub.SendVerificationStatusUpdate(user.ID, string(user.VerificationStatus), user.RejectionReason)
		d.Notifications.VerificationReviewed(background(c), user)

		d.Logger.Info("Верификация рассмотрена",
			zap.String("user_id", user.ID),
			zap.String("status", string(user.VerificationStatus)),
			zap.String("admin_id", currentUserID(c)))
		c.JSON(http.StatusOK, user)
	}
}
