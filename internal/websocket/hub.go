package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/pkg/logger"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client WebSocket 클라이언트 (대시보드 한 탭)
type Client struct {
	Hub       *Hub
	Conn      *Conn
	UserID    string
	CompanyID string
	Role      model.UserRole
	Send      chan []byte

	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

// NewClient 세션 정보로 클라이언트 생성
func NewClient(hub *Hub, conn *Conn, session *model.Session) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		UserID:    session.User.ID,
		CompanyID: session.Company.ID,
		Role:      session.User.Role,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// receives reports whether the event concerns this client
func (c *Client) receives(event model.RequestEvent) bool {
	return c.Role == model.RoleVerifier || c.CompanyID == event.CompanyID
}

// Hub WebSocket 연결 관리자. 요청 이벤트를 같은 회사 사용자와 모든 검증자에게 전달
type Hub struct {
	clients map[*Client]bool

	// 클라이언트 등록
	register chan *Client

	// 클라이언트 등록 해제
	unregister chan *Client

	// 이벤트 브로드캐스트
	broadcast chan broadcastMessage

	metrics *metrics.Metrics

	// Run 종료 시 닫힘
	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

type broadcastMessage struct {
	event model.RequestEvent
	data  []byte
}

// NewHub Hub 생성
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan broadcastMessage, 1024),
		metrics:    m,
		done:       make(chan struct{}),
	}
}

// Run Hub 실행. ctx가 끝나면 모든 연결을 닫음
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.drainPending()
			h.metrics.SetLiveClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetLiveClients(total)
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":       client.UserID,
				"company_id":    client.CompanyID,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			var slow []*Client
			h.mu.RLock()
			for client := range h.clients {
				if !client.receives(message.event) {
					continue
				}
				select {
				case client.Send <- message.data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// Send 채널이 막힌 클라이언트는 정리
			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"user_id": client.UserID,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.metrics.SetLiveClients(total)
	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":       client.UserID,
		"total_clients": total,
	})
}

// Publish 요청 이벤트 전송. 버퍼가 가득 차면 버림 (요청 처리에 영향 없음)
func (h *Hub) Publish(event model.RequestEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal request event", err, map[string]interface{}{
			"request_id": event.RequestID,
		})
		return
	}

	select {
	case h.broadcast <- broadcastMessage{event: event, data: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"request_id": event.RequestID,
			"type":       event.Type,
		})
	}
}

// drainPending closes clients that were queued for registration when the hub stopped
func (h *Hub) drainPending() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		case <-h.unregister:
		default:
			return
		}
	}
}

// Register 클라이언트 등록. Hub가 멈춘 뒤에는 Send를 닫아 writer를 종료시킴
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 클라이언트 등록 해제. Hub가 멈춘 뒤에는 아무것도 하지 않음
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount 연결된 클라이언트 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	// Rate limiting 체크
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		h.mu.RLock()
		_, connected := h.clients[client]
		if connected {
			select {
			case client.Send <- []byte(`{"type":"pong"}`):
			default:
			}
		}
		h.mu.RUnlock()
	}
}
