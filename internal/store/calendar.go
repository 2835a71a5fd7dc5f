package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"corail-backend/internal/models"
)

// ListCalendarEntries - записи, начинающиеся в [from, to)
func (s *Store) ListCalendarEntries(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEntry, error) {
	var entries []models.CalendarEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (s *Store) CreateCalendarEntry(ctx context.Context, userID string, entry *models.CalendarEntry) (*models.CalendarEntry, error) {
	entry.ID = uuid.NewString()
	entry.UserID = userID
	if entry.Status == "" {
		entry.Status = "SCHEDULED"
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("insert calendar entry: %w", err)
	}
	return entry, nil
}

func (s *Store) DeleteCalendarEntry(ctx context.Context, userID, entryID string) error {
	var entry models.CalendarEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", entryID).Error; err != nil {
		return notFound(err)
	}
	if entry.UserID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&entry).Error
}
