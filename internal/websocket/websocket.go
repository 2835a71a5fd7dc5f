package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Типы сообщений WebSocket
const (
	RideStatusUpdateType         = "RIDE_STATUS_UPDATE"
	NewRideType                  = "NEW_RIDE"
	VerificationStatusUpdateType = "VERIFICATION_STATUS_UPDATE"
	BadgeEarnedType              = "BADGE_EARNED"
	CreditsUpdateType            = "CREDITS_UPDATE"
)

const writeTimeout = 10 * time.Second

// Message - формат сообщения WebSocket
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client - одно соединение пользователя. Запись в conn только под writeMu.
type Client struct {
	conn    *websocket.Conn
	userID  string
	writeMu sync.Mutex
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Manager управляет подключениями; регистрацией владеет одна горутина Run
type Manager struct {
	clientsByUser map[string]map[*Client]bool
	register      chan *Client
	unregister    chan *Client
	done          chan struct{}
	mutex         sync.RWMutex
	logger        *zap.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // мобильное приложение, Origin не приходит
	},
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		clientsByUser: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run обрабатывает регистрацию до отмены контекста, затем закрывает все соединения
func (m *Manager) Run(ctx context.Context) {
	m.logger.Info("Запуск WebSocket Manager")
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			m.logger.Info("WebSocket Manager остановлен")
			return

		case client := <-m.register:
			m.mutex.Lock()
			if _, ok := m.clientsByUser[client.userID]; !ok {
				m.clientsByUser[client.userID] = make(map[*Client]bool)
			}
			m.clientsByUser[client.userID][client] = true
			m.mutex.Unlock()
			m.logger.Debug("Клиент зарегистрирован", zap.String("user_id", client.userID))

		case client := <-m.unregister:
			m.remove(client)
		}
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	conns, ok := m.clientsByUser[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	client.conn.Close()
	if len(conns) == 0 {
		delete(m.clientsByUser, client.userID)
	}
	m.logger.Debug("Клиент отключен", zap.String("user_id", client.userID))
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for userID, conns := range m.clientsByUser {
		for client := range conns {
			client.conn.Close()
		}
		delete(m.clientsByUser, userID)
	}
}

// Connections - число активных соединений пользователя
func (m *Manager) Connections(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clientsByUser[userID])
}

func (m *Manager) snapshot(userID string) []*Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var clients []*Client
	if userID != "" {
		for c := range m.clientsByUser[userID] {
			clients = append(clients, c)
		}
		return clients
	}
	for _, conns := range m.clientsByUser {
		for c := range conns {
			clients = append(clients, c)
		}
	}
	return clients
}

func (m *Manager) deliver(clients []*Client, message *Message) {
	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		m.logger.Error("Ошибка при кодировании сообщения", zap.Error(err))
		return
	}
	for _, c := range clients {
		if err := c.write(data); err != nil {
			m.logger.Warn("Ошибка при отправке сообщения", zap.String("user_id", c.userID), zap.Error(err))
			m.remove(c)
		}
	}
}

// BroadcastToUser отправляет сообщение всем подключениям пользователя
func (m *Manager) BroadcastToUser(userID string, message *Message) {
	m.deliver(m.snapshot(userID), message)
}

// Broadcast - всем подключенным пользователям
func (m *Manager) Broadcast(message *Message) {
	m.deliver(m.snapshot(""), message)
}

// Handler - подключение WebSocket; user_id ставит middleware авторизации
func Handler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			m.logger.Warn("Ошибка обновления соединения до WebSocket", zap.Error(err))
			return
		}

		client := &Client{conn: conn, userID: userID}
		select {
		case m.register <- client:
		case <-m.done:
			conn.Close()
			return
		}
		go m.readLoop(client)
	}
}

// readLoop отвечает на ping и снимает регистрацию при ошибке чтения
func (m *Manager) readLoop(client *Client) {
	defer func() {
		select {
		case m.unregister <- client:
		case <-m.done:
		}
	}()

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var data map[string]interface{}
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pong, _ := json.Marshal(map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			})
			if err := client.write(pong); err != nil {
				return
			}
		}
	}
}

func (m *Manager) SendRideStatusUpdate(userID, rideID, status string) {
	m.BroadcastToUser(userID, &Message{
		Type: RideStatusUpdateType,
		Payload: map[string]interface{}{
			"ride_id": rideID,
			"status":  status,
		},
	})
}

// SendNewRide - новая публичная поездка, всем
func (m *Manager) SendNewRide(ride interface{}) {
	m.Broadcast(&Message{Type: NewRideType, Payload: ride})
}

// SendNewRideTo - новая групповая поездка, только перечисленным пользователям
func (m *Manager) SendNewRideTo(userIDs []string, ride interface{}) {
	message := &Message{Type: NewRideType, Payload: ride}
	for _, userID := range userIDs {
		m.BroadcastToUser(userID, message)
	}
}

func (m *Manager) SendVerificationStatusUpdate(userID, status, reason string) {
	m.BroadcastToUser(userID, &Message{
		Type: VerificationStatusUpdateType,
		Payload: map[string]interface{}{
			"status":           status,
			"rejection_reason": reason,
		},
	})
}

func (m *Manager) SendBadgeEarned(userID string, badge interface{}) {
	m.BroadcastToUser(userID, &Message{Type: BadgeEarnedType, Payload: badge})
}

func (m *Manager) SendCreditsUpdate(userID string, credits int) {
	m.BroadcastToUser(userID, &Message{
		Type:    CreditsUpdateType,
		Payload: map[string]interface{}{"credits": credits},
	})
}
