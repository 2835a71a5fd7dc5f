package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corail-backend/internal/cache"
	"corail-backend/internal/db"
	"corail-backend/internal/services"
	"corail-backend/internal/store"
	"corail-backend/internal/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Génération de tokens",
}

// tokenAdminCmd печатает служебный HS256 токен администратора, подписанный JWT_SECRET
var tokenAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Génère un token administrateur signé avec JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := utils.GenerateAdminJWT(cfg.JWTSecret, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applique les migrations de la base de données",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := st.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("Миграции применены")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Chargement des données de référence",
}

// seedBadgesCmd загружает встроенный каталог значков; кэш каталога сбрасывается, если Redis доступен
var seedBadgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Charge le catalogue de badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, closeDB, err := openStore()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		var cacheService *cache.Service
		redisClient, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis недоступен, кэш каталога не сброшен", zap.Error(err))
			cacheService = cache.New(nil, 0, false)
		} else {
			defer redisClient.Close()
			cacheService = cache.New(redisClient, cfg.CacheTTL, cfg.CacheEnabled)
		}

		n, err := services.NewBadgeService(st, cacheService, log).Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d badges chargés\n", n)
		return nil
	},
}

func openStore() (*store.Store, func(), error) {
	gormDB, err := db.Connect(cfg.DB, 1, time.Second, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return store.New(gormDB), closeDB, nil
}
