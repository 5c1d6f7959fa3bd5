package live

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types sent to WebSocket clients.
const (
	MessageInit  = "init"
	MessagePatch = "patch"
	MessageError = "error"
)

// Message is sent to WebSocket clients. Every message carries the current
// markup of the app root.
type Message struct {
	Type    string  `json:"type"`
	Session string  `json:"session,omitempty"`
	Update  *Update `json:"update,omitempty"`
	Error   string  `json:"error,omitempty"`
	HTML    string  `json:"html,omitempty"`
}

const sendBuffer = 64

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}

	markup, err := s.Markup()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		conn.Close()
		return
	}
	if err := s.write(c, Message{Type: MessageInit, Session: c.id, HTML: markup}); err != nil {
		s.logger.Error("init write failed", "session", c.id, "error", err)
		conn.Close()
		return
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	s.config.Metrics.SessionOpened()
	s.logger.Info("session opened", "session", c.id)

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop applies events from c until the connection closes.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "session", c.id, "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.sendTo(c, Message{Type: MessageError, Error: "invalid event: " + err.Error()})
			continue
		}
		// Updates reach every client, c included, through broadcast.
		if _, err := s.Apply(ev); err != nil {
			s.sendTo(c, Message{Type: MessageError, Error: err.Error()})
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Error("write error", "session", c.id, "error", err)
			c.conn.Close()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// write sends msg synchronously, before the write loop starts.
func (s *Server) write(c *client, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("message encode failed", "error", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.enqueue(c, data)
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("message encode failed", "error", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, c := range s.clients {
		s.enqueue(c, data)
	}
}

// enqueue must be called with clientsMu held. Slow clients are dropped.
func (s *Server) enqueue(c *client, data []byte) {
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		s.logger.Warn("client too slow, dropping", "session", c.id)
		s.remove(c)
	}
}

func (s *Server) drop(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.remove(c)
}

// remove must be called with clientsMu held.
func (s *Server) remove(c *client) {
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	delete(s.clients, c.id)
	close(c.send)
	s.config.Metrics.SessionClosed()
	s.logger.Info("session closed", "session", c.id)
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, c := range s.clients {
		s.remove(c)
	}
}
