package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"taskboard/internal/logger"
	"taskboard/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 64 * 1024
)

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte

	ctx        context.Context
	hub        *Hub
	dispatcher *Dispatcher
}

// NewClient binds conn to the caller carried by ctx.
func NewClient(ctx context.Context, userID int64, conn *websocket.Conn, hub *Hub, dispatcher *Dispatcher) *Client {
	return &Client{
		UserID:     userID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		ctx:        ctx,
		hub:        hub,
		dispatcher: dispatcher,
	}
}

// Run serves the connection until the peer goes away.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()

	// explicit ready handshake so clients know calls will be served
	c.send(Message{Type: MsgReady})

	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log := logger.WithContext(c.ctx)
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read error", "error", err)
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.send(Message{Type: MsgError, Error: &ErrorPayload{
				Code:    string(service.KindValidation),
				Message: "malformed message",
			}})
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg Message) {
	switch msg.Type {
	case MsgPing:
		c.send(Message{Type: MsgPong})
	case MsgCall:
		data, err := c.dispatcher.Call(c.ctx, msg.Procedure, msg.Input)
		if err != nil {
			c.send(Message{Type: MsgError, ID: msg.ID, Error: errorPayload(err)})
			return
		}
		c.send(Message{Type: MsgResult, ID: msg.ID, Data: data})
		if IsMutation(msg.Procedure) {
			c.hub.Invalidate(c.UserID, c, service.ProcList)
		}
	default:
		c.send(Message{Type: MsgError, ID: msg.ID, Error: &ErrorPayload{
			Code:    string(service.KindValidation),
			Message: "unknown message type " + msg.Type,
		}})
	}
}

// send queues msg for the write pump. Only called from the read goroutine,
// which is the one that closes Send on exit.
func (c *Client) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithContext(c.ctx).Error("ws marshal", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.Send <- data:
	case <-time.After(writeWait):
		logger.WithContext(c.ctx).Warn("ws send queue full, dropping message", "type", msg.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.WithContext(c.ctx).Debug("ws write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
