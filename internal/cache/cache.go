package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Service - JSON кэш поверх Redis
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	enabled     bool
}

// New создает сервис кэширования. При enabled=false все операции - no-op.
func New(client *redis.Client, ttl time.Duration, enabled bool) *Service {
	if client == nil || !enabled {
		return &Service{enabled: false}
	}
	return &Service{
		redisClient: client,
		ttl:         ttl,
		enabled:     true,
	}
}

func (c *Service) Enabled() bool {
	return c.enabled
}

// Get получает данные из кэша
func (c *Service) Get(ctx context.Context, key string, result interface{}) (bool, error) {
	if !c.enabled {
		return false, nil
	}

	val, err := c.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		// Ключ не найден в кэше
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("ошибка при получении данных из кэша: %w", err)
	}

	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("ошибка при десериализации данных из кэша: %w", err)
	}

	return true, nil
}

// Set сохраняет данные в кэш
func (c *Service) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для кэша: %w", err)
	}

	if err := c.redisClient.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в кэш: %w", err)
	}

	return nil
}

// Delete удаляет ключи (инвалидация)
func (c *Service) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled || len(keys) == 0 {
		return nil
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении данных из кэша: %w", err)
	}
	return nil
}

// BadgeCatalogKey - ключ каталога бейджей
func BadgeCatalogKey() string {
	return "badges:catalog"
}

// UserBadgesKey - ключ бейджей пользователя
func UserBadgesKey(userID string) string {
	return fmt.Sprintf("badges:user:%s", userID)
}
