package services

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"corail-backend/internal/cache"
	"corail-backend/internal/models"
)

//go:embed badges.yaml
var badgeCatalog []byte

const (
	BadgeFilterAll    = "all"
	BadgeFilterEarned = "earned"
	BadgeFilterLocked = "locked"
)

// LoadCatalog разбирает встроенный каталог значков
func LoadCatalog() ([]models.Badge, error) {
	return parseCatalog(badgeCatalog)
}

func parseCatalog(data []byte) ([]models.Badge, error) {
	var badges []models.Badge
	if err := yaml.Unmarshal(data, &badges); err != nil {
		return nil, fmt.Errorf("разбор каталога значков: %w", err)
	}
	seen := make(map[string]bool, len(badges))
	for _, b := range badges {
		if b.ID == "" || b.ActionType == "" {
			return nil, fmt.Errorf("значок без id или action_type: %q", b.Name)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("повторяющийся id значка: %s", b.ID)
		}
		if b.Threshold <= 0 {
			return nil, fmt.Errorf("значок %s: threshold должен быть > 0", b.ID)
		}
		seen[b.ID] = true
	}
	return badges, nil
}

func RarityLabel(r models.BadgeRarity) string {
	switch r {
	case models.RarityLegendary:
		return "Légendaire"
	case models.RarityEpic:
		return "Épique"
	case models.RarityRare:
		return "Rare"
	case models.RarityCommon:
		return "Commun"
	}
	return string(r)
}

func RarityColor(r models.BadgeRarity) string {
	switch r {
	case models.RarityLegendary:
		return "#fbbf24"
	case models.RarityEpic:
		return "#a855f7"
	case models.RarityRare:
		return "#0ea5e9"
	}
	return "#64748b"
}

type BadgeStore interface {
	ListBadges(ctx context.Context) ([]models.Badge, error)
	SeedBadges(ctx context.Context, badges []models.Badge) error
	UserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	EarnedBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
	UpsertBadgeProgress(ctx context.Context, userID string, badge models.Badge, count int) (bool, error)
	CountActions(ctx context.Context, userID string, actionTypes ...string) (int64, error)
}

// BadgeListener вызывается для каждого только что полученного значка
type BadgeListener func(ctx context.Context, userID string, badge models.Badge)

type BadgeService struct {
	store     BadgeStore
	cache     *cache.Service
	logger    *zap.Logger
	listeners []BadgeListener
}

func NewBadgeService(store BadgeStore, cacheService *cache.Service, logger *zap.Logger) *BadgeService {
	return &BadgeService{
		store:  store,
		cache:  cacheService,
		logger: logger,
	}
}

// OnEarned регистрирует обработчик новых значков (websocket, push)
func (s *BadgeService) OnEarned(fn BadgeListener) {
	s.listeners = append(s.listeners, fn)
}

// Seed загружает встроенный каталог в БД и сбрасывает кэш каталога
func (s *BadgeService) Seed(ctx context.Context) (int, error) {
	badges, err := LoadCatalog()
	if err != nil {
		return 0, err
	}
	if err := s.store.SeedBadges(ctx, badges); err != nil {
		return 0, err
	}
	if err := s.cache.Delete(ctx, cache.BadgeCatalogKey()); err != nil {
		s.logger.Warn("Не удалось сбросить кэш каталога", zap.Error(err))
	}
	return len(badges), nil
}

// Catalog - каталог из кэша, при промахе из БД
func (s *BadgeService) Catalog(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	found, err := s.cache.Get(ctx, cache.BadgeCatalogKey(), &badges)
	if err != nil {
		s.logger.Warn("Ошибка чтения кэша каталога", zap.Error(err))
	}
	if found {
		return badges, nil
	}

	badges, err = s.store.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.BadgeCatalogKey(), badges); err != nil {
		s.logger.Warn("Ошибка записи кэша каталога", zap.Error(err))
	}
	return badges, nil
}

// Evaluate пересчитывает прогресс по всем значкам и возвращает только что полученные
func (s *BadgeService) Evaluate(ctx context.Context, userID string) ([]models.Badge, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	var awarded []models.Badge
	for _, badge := range catalog {
		count, ok := counts[badge.ActionType]
		if !ok {
			count, err = s.store.CountActions(ctx, userID, actionTypes(badge.ActionType)...)
			if err != nil {
				return awarded, err
			}
			counts[badge.ActionType] = count
		}

		earned, err := s.store.UpsertBadgeProgress(ctx, userID, badge, int(count))
		if err != nil {
			return awarded, err
		}
		if earned {
			awarded = append(awarded, badge)
		}
	}

	if len(awarded) > 0 {
		if err := s.cache.Delete(ctx, cache.UserBadgesKey(userID)); err != nil {
			s.logger.Warn("Не удалось сбросить кэш значков", zap.String("user_id", userID), zap.Error(err))
		}
		for _, badge := range awarded {
			s.logger.Info("Значок получен", zap.String("user_id", userID), zap.String("badge_id", badge.ID))
			for _, fn := range s.listeners {
				fn(ctx, userID, badge)
			}
		}
	}
	return awarded, nil
}

func actionTypes(spec string) []string {
	parts := strings.Split(spec, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Collection - каталог с прогрессом пользователя, по группам редкости.
// Счетчики считаются по всему каталогу, группы - по отфильтрованным значкам.
func (s *BadgeService) Collection(ctx context.Context, userID, filter string) (*models.BadgeCollection, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.UserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	byBadge := make(map[string]models.UserBadge, len(records))
	for _, r := range records {
		byBadge[r.BadgeID] = r
	}

	collection := &models.BadgeCollection{TotalCount: len(catalog), Groups: []models.BadgeGroup{}}
	grouped := make(map[models.BadgeRarity][]models.BadgeView)
	for _, badge := range catalog {
		view := models.BadgeView{
			Badge:       badge,
			RarityLabel: RarityLabel(badge.Rarity),
			RarityColor: RarityColor(badge.Rarity),
		}
		if r, ok := byBadge[badge.ID]; ok {
			view.Progress = r.Progress
			view.EarnedAt = r.EarnedAt
		}
		if view.EarnedAt != nil {
			collection.EarnedCount++
		}

		switch {
		case filter == BadgeFilterEarned && view.EarnedAt == nil:
			continue
		case filter == BadgeFilterLocked && view.EarnedAt != nil:
			continue
		}
		grouped[badge.Rarity] = append(grouped[badge.Rarity], view)
	}

	if collection.TotalCount > 0 {
		collection.CompletionPercentage = int(math.Round(float64(collection.EarnedCount) / float64(collection.TotalCount) * 100))
	}
	for _, rarity := range models.RarityOrder {
		views := grouped[rarity]
		if len(views) == 0 {
			continue
		}
		collection.Groups = append(collection.Groups, models.BadgeGroup{
			Rarity: rarity,
			Label:  RarityLabel(rarity),
			Color:  RarityColor(rarity),
			Badges: views,
		})
	}
	return collection, nil
}

// Earned - полученные значки в плоском формате, новые сначала
func (s *BadgeService) Earned(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	var earned []models.EarnedBadge
	key := cache.UserBadgesKey(userID)
	if found, err := s.cache.Get(ctx, key, &earned); err == nil && found {
		return earned, nil
	}

	records, err := s.store.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned = make([]models.EarnedBadge, 0, len(records))
	for _, r := range records {
		if r.Badge == nil || r.EarnedAt == nil {
			continue
		}
		earned = append(earned, models.EarnedBadge{
			BadgeID:          r.Badge.ID,
			BadgeName:        r.Badge.Name,
			BadgeDescription: r.Badge.Description,
			BadgeIcon:        r.Badge.Icon,
			BadgeColor:       r.Badge.Color,
			BadgeRarity:      r.Badge.Rarity,
			EarnedAt:         *r.EarnedAt,
		})
	}
	if err := s.cache.Set(ctx, key, earned); err != nil {
		s.logger.Warn("Ошибка записи кэша значков", zap.String("user_id", userID), zap.Error(err))
	}
	return earned, nil
}
