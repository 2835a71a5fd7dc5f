// Package events публикует доменные события поездок в RabbitMQ
// (topic exchange corail.rides, ключи ride.*).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
)

const Exchange = "corail.rides"

const (
	RidePublished = "ride.published"
	RideClaimed   = "ride.claimed"
	RideCompleted = "ride.completed"
	RideCancelled = "ride.cancelled"
	RideDeleted   = "ride.deleted"
)

type RideEvent struct {
	Event      string                `json:"event"`
	RideID     string                `json:"ride_id"`
	CreatorID  string                `json:"creator_id"`
	PickerID   *string               `json:"picker_id,omitempty"`
	Status     models.RideStatus     `json:"status"`
	Visibility models.RideVisibility `json:"visibility"`
	PriceCents int64                 `json:"price_cents"`
	OccurredAt time.Time             `json:"occurred_at"`
}

func NewRideEvent(event string, ride *models.Ride, at time.Time) RideEvent {
	return RideEvent{
		Event:      event,
		RideID:     ride.ID,
		CreatorID:  ride.CreatorID,
		PickerID:   ride.PickerID,
		Status:     ride.Status,
		Visibility: ride.Visibility,
		PriceCents: ride.PriceCents,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	PublishRide(ctx context.Context, event string, ride *models.Ride) error
	Close() error
}

// Noop - когда RABBITMQ_URL не задан; события только считаются в метриках
type Noop struct{}

func (Noop) PublishRide(_ context.Context, event string, _ *models.Ride) error {
	middleware.TrackRideEvent(event)
	return nil
}

func (Noop) Close() error { return nil }

type AMQPPublisher struct {
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	mu     sync.Mutex
	logger *zap.Logger
}

// Connect подключается к RabbitMQ (несколько попыток) и объявляет exchange
func Connect(url string, attempts int, delay time.Duration, logger *zap.Logger) (*AMQPPublisher, error) {
	if attempts < 1 {
		attempts = 1
	}
	var conn *amqp091.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("RabbitMQ недоступен, повтор", zap.Int("attempt", i+1), zap.Error(err))
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("Подключение к RabbitMQ установлено", zap.String("exchange", Exchange))
	return &AMQPPublisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *AMQPPublisher) PublishRide(ctx context.Context, event string, ride *models.Ride) error {
	middleware.TrackRideEvent(event)

	body, err := json.Marshal(NewRideEvent(event, ride, time.Now()))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	err = p.ch.PublishWithContext(ctx,
		Exchange, // exchange
		event,    // routing key
		false,    // mandatory
		false,    // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		middleware.TrackExternalRequest("amqp", "error", time.Since(start))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	middleware.TrackExternalRequest("amqp", "ok", time.Since(start))
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.logger.Warn("Ошибка закрытия канала RabbitMQ", zap.Error(err))
	}
	return p.conn.Close()
}
