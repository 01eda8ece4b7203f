package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tlau/rpsduel/internal/protocol"
)

const (
	// writeWait bounds a single frame or control write.
	writeWait = 10 * time.Second
	// frameQueueSize buffers decoded frames between the read pump and the
	// session.
	frameQueueSize = 32
	// pongQueueSize buffers pong notifications; stale ones are drained
	// before each ping.
	pongQueueSize = 4
	// maxFrameBytes caps an incoming message; protocol frames are tiny.
	maxFrameBytes = 4096
)

// ErrConnClosed is returned by Ping when the connection goes away before the
// pong arrives.
var ErrConnClosed = errors.New("server: connection closed")

// Conn adapts one gorilla websocket connection to the session transport.
// The read pump is the sole reader: it decodes client frames at the
// boundary and hands them over on a channel, so the session never touches
// the socket's read side directly.
type Conn struct {
	ws     *websocket.Conn
	logger *log.Logger

	frames chan protocol.ClientFrame
	pongs  chan struct{}
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewConn wraps ws and starts its read pump.
func NewConn(ws *websocket.Conn, logger *log.Logger) *Conn {
	c := &Conn{
		ws:     ws,
		logger: logger,
		frames: make(chan protocol.ClientFrame, frameQueueSize),
		pongs:  make(chan struct{}, pongQueueSize),
		done:   make(chan struct{}),
	}
	ws.SetReadLimit(maxFrameBytes)
	ws.SetPongHandler(func(string) error {
		select {
		case c.pongs <- struct{}{}:
		default:
		}
		return nil
	})
	go c.readPump()
	return c
}

// readPump reads until the connection errors out, decoding each text frame
// and forwarding it. Undecodable frames are logged and dropped so one bad
// client message cannot take the session down.
func (c *Conn) readPump() {
	defer close(c.frames)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read failed", "error", err)
			}
			return
		}

		frame, err := protocol.ParseClientFrame(data)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

// Frames yields decoded client frames. Closed when the connection is.
func (c *Conn) Frames() <-chan protocol.ClientFrame {
	return c.frames
}

// Send writes one server frame as a JSON text message.
func (c *Conn) Send(frame protocol.ServerFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(frame)
}

// Ping sends a websocket ping and waits for the matching pong, bounded by
// ctx. Pongs left over from earlier pings are discarded first.
func (c *Conn) Ping(ctx context.Context) error {
	for {
		select {
		case <-c.pongs:
			continue
		default:
		}
		break
	}

	c.writeMu.Lock()
	err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	select {
	case <-c.pongs:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		_ = c.ws.Close()
	})
	return nil
}
