package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a gorilla websocket connection for one authenticated user.
// Writes are serialized; gorilla connections allow one concurrent writer.
type Conn struct {
	ws      *websocket.Conn
	userID  string
	writeMu sync.Mutex
}

func NewConn(ws *websocket.Conn, userID string) *Conn {
	return &Conn{ws: ws, userID: userID}
}

func (c *Conn) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(message)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) UserID() string {
	return c.userID
}
