package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket channel for one user in one conversation.
type Client struct {
	conn           *websocket.Conn
	userID         primitive.ObjectID
	conversationID primitive.ObjectID

	send      chan []byte
	closeOnce sync.Once
	logger    *logger.Logger
}

func NewClient(conn *websocket.Conn, userID, conversationID primitive.ObjectID) *Client {
	return &Client{
		conn:           conn,
		userID:         userID,
		conversationID: conversationID,
		send:           make(chan []byte, sendBuffer),
		logger:         logger.GetLogger(),
	}
}

func (c *Client) UserID() primitive.ObjectID         { return c.userID }
func (c *Client) ConversationID() primitive.ObjectID { return c.conversationID }

// trySend queues a payload without blocking. A client whose buffer is
// full drops the frame; the read pump will notice a dead peer soon
// enough.
func (c *Client) trySend(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.logger.WithUserID(c.userID.Hex()).Warn("dropping frame for slow websocket client")
	}
}

// closeSend ends the write pump, which closes the connection.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump consumes inbound frames and hands them to handle until the
// connection drops.
func (c *Client) readPump(handle func(raw []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithUserID(c.userID.Hex()).WithError(err).Debug("websocket read error")
			}
			return
		}
		handle(raw)
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
