package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"corail-backend/internal/middleware"
)

// Pusher отправляет push уведомление на устройство
type Pusher interface {
	SendToDevice(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMService - клиент legacy HTTP API Firebase Cloud Messaging
type FCMService struct {
	serverKey  string
	endpoint   string
	httpClient *http.Client
}

type FCMPayload struct {
	To           string              `json:"to"`
	Data         map[string]string   `json:"data,omitempty"`
	Notification NotificationContent `json:"notification"`
	Priority     string              `json:"priority,omitempty"`
}

type NotificationContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

func NewFCMService(serverKey, endpoint string) *FCMService {
	return &FCMService{
		serverKey:  serverKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled - без ключа сервера уведомления не отправляются
func (s *FCMService) Enabled() bool {
	return s.serverKey != ""
}

func (s *FCMService) SendToDevice(ctx context.Context, token, title, body string, data map[string]string) error {
	if !s.Enabled() {
		return nil
	}

	payload := FCMPayload{
		To:           token,
		Data:         data,
		Notification: NotificationContent{Title: title, Body: body, Sound: "default"},
		Priority:     "high",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге данных: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Authorization", "key="+s.serverKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		middleware.TrackExternalRequest("fcm", "error", time.Since(start))
		return fmt.Errorf("ошибка при отправке запроса: %w", err)
	}
	defer resp.Body.Close()
	middleware.TrackExternalRequest("fcm", fmt.Sprint(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FCM вернул ошибку: %s", resp.Status)
	}
	return nil
}
