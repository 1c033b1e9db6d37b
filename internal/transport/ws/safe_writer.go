package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// SafeWriter serializes writes to one websocket connection.
type SafeWriter struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

func (w *SafeWriter) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *SafeWriter) Close() error {
	return w.conn.Close()
}
