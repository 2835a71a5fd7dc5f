package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"corail-backend/internal/links"
	"corail-backend/internal/middleware"
)

var ErrWhatsAppDisabled = errors.New("green api не настроен")

// WhatsAppService отправляет сообщения через Green API
type WhatsAppService struct {
	idInstance       string
	apiTokenInstance string
	baseURL          string
	httpClient       *http.Client
	logger           *zap.Logger
}

func NewWhatsAppService(baseURL, idInstance, apiToken string, logger *zap.Logger) *WhatsAppService {
	return &WhatsAppService{
		idInstance:       idInstance,
		apiTokenInstance: apiToken,
		baseURL:          baseURL,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		logger:           logger,
	}
}

func (w *WhatsAppService) Enabled() bool {
	return w.idInstance != "" && w.apiTokenInstance != "" && w.baseURL != ""
}

// CheckWhatsAppNumber проверяет, зарегистрирован ли номер в WhatsApp
func (w *WhatsAppService) CheckWhatsAppNumber(ctx context.Context, phone string) (bool, error) {
	if !w.Enabled() {
		return false, ErrWhatsAppDisabled
	}
	chatID := links.PhoneDigits(phone)
	if chatID == "" {
		return false, fmt.Errorf("номер телефона должен содержать цифры: %s", phone)
	}

	url := fmt.Sprintf("%s/waInstance%s/checkWhatsapp/%s", w.baseURL, w.idInstance, w.apiTokenInstance)
	var response struct {
		ExistsWhatsapp bool `json:"existsWhatsapp"`
	}
	if err := w.post(ctx, url, map[string]interface{}{"phoneNumber": chatID}, &response); err != nil {
		return false, fmt.Errorf("ошибка при проверке номера: %w", err)
	}
	return response.ExistsWhatsapp, nil
}

// SendMessage отправляет текст на номер; возвращает idMessage
func (w *WhatsAppService) SendMessage(ctx context.Context, phone, message string) (string, error) {
	if !w.Enabled() {
		return "", ErrWhatsAppDisabled
	}
	digits := links.PhoneDigits(phone)
	if digits == "" {
		return "", fmt.Errorf("номер телефона не может быть пустым")
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", w.baseURL, w.idInstance, w.apiTokenInstance)
	payload := map[string]interface{}{
		"chatId":  digits + "@c.us",
		"message": message,
	}

	var response struct {
		IDMessage string `json:"idMessage"`
	}
	if err := w.post(ctx, url, payload, &response); err != nil {
		return "", err
	}
	if response.IDMessage == "" {
		return "", fmt.Errorf("отсутствует idMessage в ответе")
	}

	w.logger.Info("Сообщение отправлено через WhatsApp", zap.String("id_message", response.IDMessage))
	return response.IDMessage, nil
}

func (w *WhatsAppService) post(ctx context.Context, url string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге данных: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := w.httpClient.Do(req)
	if err != nil {
		middleware.TrackExternalRequest("green_api", "error", time.Since(start))
		return fmt.Errorf("ошибка при отправке запроса: %w", err)
	}
	defer resp.Body.Close()
	middleware.TrackExternalRequest("green_api", strconv.Itoa(resp.StatusCode), time.Since(start))

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка при чтении ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("ошибка от Green API: %s", apiErr.Error)
		}
		return fmt.Errorf("неожиданный статус ответа: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("ошибка при разборе ответа: %w, тело: %s", err, string(bodyBytes))
	}
	return nil
}
