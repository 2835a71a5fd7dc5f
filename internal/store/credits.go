package store

import (
	"context"

	"corail-backend/internal/models"
)

// Credits - текущий баланс пользователя
func (s *Store) Credits(ctx context.Context, userID string) (int, error) {
	return balance(s.db.WithContext(ctx), userID)
}

func (s *Store) CreditHistory(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var history []models.CreditTransaction
	if err := q.Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
