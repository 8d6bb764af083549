package chat

import (
	"sync"
	"time"

	"github.com/Piyash1/AstroChat-Mobile/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client wraps one websocket connection with a buffered outbound queue. A
// single write pump goroutine owns all writes; everything else enqueues.
// Delivery is best-effort: a full queue drops the event rather than stalling
// the sender's fan-out.
type Client struct {
	ConnID string
	UserID string

	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(connID, userID string, conn *websocket.Conn, queueSize int, writeTimeout time.Duration) *Client {
	if queueSize <= 0 {
		queueSize = 256
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Client{
		ConnID:       connID,
		UserID:       userID,
		conn:         conn,
		send:         make(chan []byte, queueSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// Run drains the send queue until Close. Write errors end the pump; the read
// loop notices via the closed transport and runs disconnect cleanup.
func (c *Client) Run() {
	for {
		select {
		case <-c.done:
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.writeRaw(data); err != nil {
				logger.Debug("write pump stopping",
					zap.String("connID", c.ConnID), zap.String("userID", c.UserID), zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

func (c *Client) writeRaw(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Enqueue queues an encoded frame for delivery. Returns false when the client
// is closed or its queue is full (the event is dropped).
func (c *Client) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		logger.Warn("send queue full, dropping event",
			zap.String("connID", c.ConnID), zap.String("userID", c.UserID))
		return false
	}
}

// Deliver encodes and queues one outbound frame.
func (c *Client) Deliver(f *OutFrame) bool {
	data, err := f.Encode()
	if err != nil {
		logger.Error("encode frame", zap.String("event", f.Event), zap.Error(err))
		return false
	}
	return c.Enqueue(data)
}

// Close is idempotent and safe from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Done is closed once the client is shut down.
func (c *Client) Done() <-chan struct{} { return c.done }
