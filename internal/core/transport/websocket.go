package transport

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/driftsync/driftsync/internal/core/observability/log"
)

var _ Connection = (*WSConn)(nil)
var _ Listener = (*WSListener)(nil)

// WSConn adapts a gorilla websocket to the tick-driven Connection contract.
// A reader goroutine buffers inbound frames; Poll drains the buffer.
type WSConn struct {
	id     string
	conn   *websocket.Conn
	closed int32

	mu    sync.Mutex
	inbox [][]byte

	writeMu      sync.Mutex
	writeTimeout time.Duration

	lg log.Log
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration, lg log.Log) *WSConn {
	c := &WSConn{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
		lg:           lg,
	}
	go c.readLoop()
	return c
}

func (c *WSConn) ID() string { return c.id }

func (c *WSConn) Send(data []byte) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *WSConn) Poll() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.inbox
	c.inbox = nil
	return pending
}

func (c *WSConn) Closed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *WSConn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.conn.Close()
}

func (c *WSConn) readLoop() {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if atomic.LoadInt32(&c.closed) == 0 {
				c.lg.Debug("websocket read ended", log.String("conn", c.id), log.Err(err))
			}
			_ = c.Close()
			return
		}
		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}
		c.mu.Lock()
		c.inbox = append(c.inbox, data)
		c.mu.Unlock()
	}
}

// WSListener upgrades HTTP requests and hands the resulting connections to
// Accept.
type WSListener struct {
	server   *http.Server
	addr     string
	accepted chan Connection
	closed   int32
	lg       log.Log

	writeTimeout time.Duration
}

// ListenWebSocket starts an HTTP server upgrading connections on /sync.
func ListenWebSocket(addr string, writeTimeout time.Duration, lg log.Log) (*WSListener, error) {
	if lg == nil {
		lg = log.Provide()
	}
	l := &WSListener{
		addr:         addr,
		accepted:     make(chan Connection, 16),
		lg:           lg,
		writeTimeout: writeTimeout,
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg.Warn("websocket upgrade failed", log.Err(err))
			return
		}
		wsc := newWSConn(conn, l.writeTimeout, lg)
		select {
		case l.accepted <- wsc:
		default:
			lg.Warn("accept backlog full, dropping connection", log.String("conn", wsc.ID()))
			_ = wsc.Close()
		}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l.addr = ln.Addr().String()
	l.server = &http.Server{Handler: mux}

	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			lg.Error("websocket listener stopped", log.Err(err))
		}
	}()

	lg.Info("websocket listener started", log.String("addr", l.addr))
	return l, nil
}

func (l *WSListener) Accept(ctx context.Context) (Connection, error) {
	if atomic.LoadInt32(&l.closed) == 1 {
		return nil, ErrListenerDown
	}
	select {
	case conn, ok := <-l.accepted:
		if !ok {
			return nil, ErrListenerDown
		}
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *WSListener) Addr() string { return l.addr }

func (l *WSListener) Close() error {
	if !atomic.CompareAndSwapInt32(&l.closed, 0, 1) {
		return nil
	}
	return l.server.Close()
}
