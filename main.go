package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"corail-backend/internal/cache"
	"corail-backend/internal/config"
	"corail-backend/internal/db"
	"corail-backend/internal/events"
	"corail-backend/internal/handlers"
	"corail-backend/internal/logger"
	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/routes"
	"corail-backend/internal/services"
	"corail-backend/internal/store"
	"corail-backend/internal/validation"
	"corail-backend/internal/websocket"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer func() { _ = logg.Sync() }()
	zap.ReplaceGlobals(logg)

	// Устанавливаем режим релиза для продакшена
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterWithGin(); err != nil {
		logg.Fatal("Ошибка регистрации валидаторов", zap.Error(err))
	}

	// Корневой контекст фоновых задач, отменяется по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Connect(cfg.DB, 5, 5*time.Second, logg)
	if err != nil {
		logg.Fatal("Ошибка подключения к базе данных", zap.Error(err))
	}

	redisClient, err := db.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logg.Fatal("Redis недоступен", zap.Error(err))
	}
	defer redisClient.Close()
	logg.Info("Успешное подключение к Redis", zap.String("addr", cfg.Redis.Addr()))

	st := store.New(gormDB, store.WithWelcomeBonus(cfg.WelcomeBonus))
	if err := st.Migrate(ctx); err != nil {
		logg.Fatal("Ошибка миграции базы данных", zap.Error(err))
	}

	cacheService := cache.New(redisClient, cfg.CacheTTL, cfg.CacheEnabled)
	fcm := services.NewFCMService(cfg.FirebaseServerKey, cfg.FCMEndpoint)
	if !fcm.Enabled() {
		logg.Warn("FIREBASE_SERVER_KEY не задан, push уведомления отключены")
	}
	notifier := services.NewNotificationService(redisClient, fcm, st, logg)
	hub := websocket.NewManager(logg)

	badges := services.NewBadgeService(st, cacheService, logg)
	badges.OnEarned(func(ctx context.Context, userID string, badge models.Badge) {
		hub.SendBadgeEarned(userID, badge)
		notifier.BadgeEarned(ctx, userID, badge)
	})
	if n, err := badges.Seed(ctx); err != nil {
		logg.Error("Ошибка загрузки каталога значков", zap.Error(err))
	} else {
		logg.Info("Каталог значков загружен", zap.Int("badges", n))
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.Connect(cfg.RabbitMQURL, 5, 2*time.Second, logg)
		if err != nil {
			logg.Error("RabbitMQ недоступен, события поездок не публикуются", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	go hub.Run(ctx)
	reminders := services.NewReminderScheduler(st, notifier, logg, cfg.ReminderInterval, cfg.DailySummaryHour)
	go reminders.Run(ctx)

	authCfg := middleware.AuthConfig{
		Users:       st,
		JWTSecret:   cfg.JWTSecret,
		DevFallback: cfg.IsDevelopment(),
		Logger:      logg,
	}
	if cfg.FirebaseProjectID != "" {
		authCfg.Verifier = services.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.FirebaseCertsURL)
	} else if cfg.IsDevelopment() {
		logg.Warn("FIREBASE_PROJECT_ID не задан: все запросы выполняются от dev пользователя",
			zap.String("user_id", middleware.DevUserID))
	}
	auth := middleware.FirebaseAuth(authCfg)

	deps := &handlers.Deps{
		Store:         st,
		Badges:        badges,
		Notifications: notifier,
		WhatsApp:      services.NewWhatsAppService(cfg.GreenAPIBaseURL, cfg.GreenAPIInstanceID, cfg.GreenAPIToken, logg),
		Hub:           hub,
		Events:        publisher,
		Redis:         redisClient,
		Config:        cfg,
		Logger:        logg,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logg))

	// Добавляем middleware для сбора метрик
	r.Use(middleware.PrometheusMiddleware())

	// Настройка доверенных прокси
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logg.Warn("Ошибка настройки доверенных прокси", zap.Error(err))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Статическая директория для загруженных файлов
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", handlers.Health(deps))

	routes.SetupRoutes(r.Group("/api"), deps, auth)

	// WebSocket вне группы /api для совместимости с клиентом; токен можно передать в ?token=
	r.GET("/ws", auth, websocket.Handler(hub))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info("Сервер запущен", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("Получен сигнал завершения, закрываем соединения...")

	// Даем 30 секунд на завершение текущих запросов
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Ошибка при graceful shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logg.Info("Сервер корректно завершил работу")
}
