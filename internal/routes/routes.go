package routes

import (
	"github.com/gin-gonic/gin"

	"corail-backend/internal/handlers"
	"corail-backend/internal/middleware"
)

func SetupRoutes(api *gin.RouterGroup, d *handlers.Deps, auth gin.HandlerFunc) {
	// Публичная страница сметы для клиента
	quotes := api.Group("/quotes/public")
	{
		quotes.GET("/:token", handlers.QuotePublicGet(d))
		quotes.POST("/:token/respond", handlers.QuoteRespond(d))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(auth)
	verified := middleware.RequireVerified(d.Config.RequireVerification)
	{
		// Профиль и верификация
		protected.GET("/profile", handlers.UserGetProfile(d))
		protected.PUT("/profile", handlers.UserUpdateProfile(d))
		protected.PUT("/profile/fcm-token", handlers.UserUpdateFCMToken(d))
		protected.POST("/profile/avatar", handlers.UploadAvatar(d))
		protected.GET("/profile/qrcode", handlers.UserProfileQRCode(d))
		protected.POST("/verification", handlers.VerificationSubmit(d))

		// Маркетплейс
		protected.GET("/rides", handlers.RideListMarketplace(d))
		protected.GET("/rides/mine", handlers.RideListMine(d))
		protected.POST("/rides", verified, handlers.RideCreate(d))
		protected.GET("/rides/:id", handlers.RideGet(d))
		protected.GET("/rides/:id/links", handlers.RideLinks(d))
		protected.POST("/rides/:id/claim", verified, handlers.RideClaim(d))
		protected.POST("/rides/:id/complete", handlers.RideComplete(d))
		protected.POST("/rides/:id/cancel", handlers.RideCancel(d))
		protected.DELETE("/rides/:id", handlers.RideDelete(d))

		// Личный журнал поездок
		protected.GET("/personal-rides", handlers.PersonalRideList(d))
		protected.POST("/personal-rides", handlers.PersonalRideCreate(d))
		protected.GET("/personal-rides/stats", handlers.PersonalRideStats(d))

		// Планинг
		protected.GET("/planning", handlers.PlanningGet(d))
		protected.POST("/calendar", handlers.CalendarEntryCreate(d))
		protected.DELETE("/calendar/:id", handlers.CalendarEntryDelete(d))

		// Кредиты, значки, лента
		protected.GET("/credits", handlers.CreditsGet(d))
		protected.GET("/credits/history", handlers.CreditHistory(d))
		protected.GET("/badges", handlers.BadgeCollection(d))
		protected.GET("/users/:id/badges", handlers.UserBadges(d))
		protected.GET("/activity", handlers.ActivityList(d))

		// Группы
		protected.GET("/groups", handlers.GroupList(d))
		protected.POST("/groups", handlers.GroupCreate(d))
		protected.POST("/groups/join", handlers.GroupJoin(d))
		protected.GET("/groups/:id", handlers.GroupGet(d))
		protected.DELETE("/groups/:id/members/me", handlers.GroupLeave(d))

		// Сметы
		protected.GET("/quotes", handlers.QuoteList(d))
		protected.POST("/quotes", handlers.QuoteCreate(d))

		// Уведомления
		protected.GET("/notifications/preferences", handlers.NotificationPreferencesGet(d))
		protected.PUT("/notifications/preferences", handlers.NotificationPreferencesUpdate(d))
		protected.POST("/notifications/test", handlers.NotificationTest(d))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/verifications", handlers.AdminListVerifications(d))
		admin.PUT("/verifications/:userId", handlers.AdminReviewVerification(d))
	}
}
