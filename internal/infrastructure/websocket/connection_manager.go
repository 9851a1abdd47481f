package websocket

import (
	"context"
	"sync"

	"bidmarket/pkg/logger"
)

// ConnectionManager tracks open websocket connections per user and fans
// notifications out to all of a user's devices.
type ConnectionManager struct {
	userConns map[string][]*Conn
	mutex     sync.RWMutex
	log       logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		userConns: make(map[string][]*Conn),
		log:       log,
	}
}

func (cm *ConnectionManager) RegisterConnection(conn *Conn) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.userConns[conn.UserID()] = append(cm.userConns[conn.UserID()], conn)
	cm.log.Info("Connection registered", "user_id", conn.UserID())
}

func (cm *ConnectionManager) UnregisterConnection(conn *Conn) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	conns := cm.userConns[conn.UserID()]
	var kept []*Conn
	for _, existing := range conns {
		if existing != conn {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		delete(cm.userConns, conn.UserID())
	} else {
		cm.userConns[conn.UserID()] = kept
	}
	cm.log.Info("Connection unregistered", "user_id", conn.UserID())
}

// NotifyUser delivers the message to every open connection of the user.
// Delivery is best effort; absent users are not an error.
func (cm *ConnectionManager) NotifyUser(ctx context.Context, userID string, message interface{}) error {
	cm.mutex.RLock()
	conns := append([]*Conn(nil), cm.userConns[userID]...)
	cm.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to push notification", "user_id", userID, "error", err)
		}
	}
	return nil
}
