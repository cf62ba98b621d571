package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("ASP not connected")

type connection struct {
	conn    *websocket.Conn
	ownerID string
	mu      sync.Mutex // serializes writes; reads happen on one goroutine
}

// Manager tracks the live websocket connection of each ASP. One
// connection per device; a re-register replaces the previous one.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*connection // aspID -> connection
}

func NewManager() *Manager {
	return &Manager{connections: make(map[string]*connection)}
}

// Register binds a device connection to an ASP id, closing any
// previous connection for the same device.
func (m *Manager) Register(aspID, ownerID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.connections[aspID]; ok && old.conn != conn {
		_ = old.conn.Close()
	}
	m.connections[aspID] = &connection{conn: conn, ownerID: ownerID}
}

// Unregister drops the connection for an ASP, if it is still the one
// passed in. A stale goroutine must not evict its replacement.
func (m *Manager) Unregister(aspID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.connections[aspID]; ok && cur.conn == conn {
		_ = cur.conn.Close()
		delete(m.connections, aspID)
	}
}

// Send delivers a text payload to a connected ASP.
func (m *Manager) Send(aspID string, payload []byte) error {
	m.mu.RLock()
	cur, ok := m.connections[aspID]
	m.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}

	cur.mu.Lock()
	defer cur.mu.Unlock()
	return cur.conn.WriteMessage(websocket.TextMessage, payload)
}

// IsConnected reports whether an ASP currently has a live connection.
func (m *Manager) IsConnected(aspID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[aspID]
	return ok
}

// Connected returns the ids of all currently connected ASPs.
func (m *Manager) Connected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	return ids
}

// ConnectedOwned returns the connected ASPs registered by one owner.
func (m *Manager) ConnectedOwned(ownerID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, cur := range m.connections {
		if cur.ownerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids
}
