package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

// Manager routes JSON frames to connected clients by user ID. A user may
// hold several connections (multiple tabs); a frame to a user reaches all of
// them.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
	closed      bool
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// Connection is one WebSocket client.
type Connection struct {
	id     string
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan interface{}
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the request and serves it until the client
// disconnects. The caller authenticates the user before handing over.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := &Connection{
		id:     uuid.New().String(),
		userID: userID,
		conn:   ws,
		send:   make(chan interface{}, sendBufferSize),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		ws.Close()
		return nil
	}
	key := userID.String()
	if m.connections[key] == nil {
		m.connections[key] = make(map[*Connection]struct{})
	}
	m.connections[key][conn] = struct{}{}
	m.mu.Unlock()

	m.logger.Debug("WebSocket connected",
		zap.String("connection_id", conn.id),
		zap.String("user_id", key))

	go m.writePump(conn)
	m.readPump(conn)
	return nil
}

func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.remove(conn)
		conn.conn.Close()
	}()

	conn.conn.SetReadLimit(512)
	conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients only listen; inbound frames are drained to keep the
	// connection's control messages flowing.
	for {
		if _, _, err := conn.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("WebSocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) remove(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := conn.userID.String()
	if conns, ok := m.connections[key]; ok {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			close(conn.send)
			if len(conns) == 0 {
				delete(m.connections, key)
			}
		}
	}
}

// SendToUser pushes a frame to every connection the user holds. Offline
// users are not an error; persistence is the caller's concern.
func (m *Manager) SendToUser(userID uuid.UUID, message interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for conn := range m.connections[userID.String()] {
		select {
		case conn.send <- message:
		default:
			m.logger.Warn("WebSocket send buffer full, dropping frame",
				zap.String("connection_id", conn.id))
		}
	}
}

// ConnectionCount returns the number of active connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, conns := range m.connections {
		count += len(conns)
	}
	return count
}

// Close terminates all connections. The manager cannot be reused.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for key, conns := range m.connections {
		for conn := range conns {
			conn.conn.Close()
			close(conn.send)
		}
		delete(m.connections, key)
	}
}
