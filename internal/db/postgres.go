// Package db - подключения к PostgreSQL и Redis
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"corail-backend/internal/config"
)

// Connect открывает PostgreSQL с повторными попытками и настраивает пул соединений
func Connect(cfg config.DBConfig, maxAttempts int, delay time.Duration, log *zap.Logger) (*gorm.DB, error) {
	var err error
	for i := 0; i < maxAttempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("не удалось получить доступ к sql.DB: %w", err)
			}
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
			return db, nil
		}
		log.Warn("Попытка подключения к БД не удалась",
			zap.Int("attempt", i+1), zap.Int("max_attempts", maxAttempts), zap.Error(err))
		if i < maxAttempts-1 {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("не удалось подключиться к базе данных после %d попыток: %w", maxAttempts, err)
}
