package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"corail-backend/internal/models"
)

// CreateQuote сохраняет смету со случайным токеном публичной ссылки
func (s *Store) CreateQuote(ctx context.Context, driverID string, quote *models.Quote) (*models.Quote, error) {
	quote.ID = uuid.NewString()
	quote.DriverID = driverID
	quote.Token = strings.ReplaceAll(uuid.NewString(), "-", "")
	quote.Status = models.QuotePending

	err := s.db.WithContext(ctx).Create(quote).Error
	if err != nil {
		return nil, fmt.Errorf("insert quote: %w", err)
	}
	_ = logActivity(s.db.WithContext(ctx), driverID, models.ActionQuoteSent, "Devis envoyé à "+quote.ClientName, nil)
	return quote, nil
}

func (s *Store) ListQuotes(ctx context.Context, driverID string) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

func (s *Store) QuoteByToken(ctx context.Context, token string) (*models.Quote, *models.User, error) {
	var quote models.Quote
	if err := s.db.WithContext(ctx).First(&quote, "token = ?", token).Error; err != nil {
		return nil, nil, notFound(err)
	}
	driver, err := s.GetUser(ctx, quote.DriverID)
	if err != nil {
		return nil, nil, err
	}
	return &quote, driver, nil
}

// RespondQuote - ответ клиента; повторный ответ - ErrAlreadyResponded
func (s *Store) RespondQuote(ctx context.Context, token string, accept bool) (*models.Quote, error) {
	status := models.QuoteDeclined
	if accept {
		status = models.QuoteAccepted
	}

	res := s.db.WithContext(ctx).Model(&models.Quote{}).
		Where("token = ? AND status = ?", token, models.QuotePending).
		Updates(map[string]interface{}{"status": status, "responded_at": s.clock()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var quote models.Quote
		if err := s.db.WithContext(ctx).First(&quote, "token = ?", token).Error; err != nil {
			return nil, notFound(err)
		}
		return nil, ErrAlreadyResponded
	}

	var quote models.Quote
	if err := s.db.WithContext(ctx).First(&quote, "token = ?", token).Error; err != nil {
		return nil, notFound(err)
	}
	return &quote, nil
}
