package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/behave/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const maxClientMessage = 512

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if int(atomic.LoadInt64(&s.clientCount)) >= s.config.MaxClients {
		s.logger.Warn("Maximum clients reached, rejecting connection", log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
		done: make(chan struct{}),
	}
	if latest := s.latest.Load(); latest != nil {
		c.send <- *latest
	}
	if !s.register(c) {
		_ = conn.Close()
		return
	}

	s.logger.Info("Client connected",
		log.String("client_id", c.id),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	go func() {
		defer s.workerGroup.Done()
		s.writePump(c)
	}()
	s.readPump(c)
}

// register adds c and reserves its write pump in the worker group. It fails
// once Stop has begun, so Stop never misses a client.
func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.LoadInt32(&s.running) == 0 {
		return false
	}
	s.clients.Store(c.id, c)
	atomic.AddInt64(&s.clientCount, 1)
	s.workerGroup.Add(1)
	return true
}

// readPump discards client messages and detects disconnects.
func (s *Server) readPump(c *client) {
	defer s.removeClient(c)

	c.conn.SetReadLimit(maxClientMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(s.config.ClientTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.config.ClientTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Client read failed", log.String("client_id", c.id), log.Error(err))
			}
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.removeClient(c)
				return
			}
			atomic.AddUint64(&s.sent, 1)
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.removeClient(c)
				return
			}
		case <-c.done:
			return
		case <-s.stopChan:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			s.removeClient(c)
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	c.once.Do(func() {
		s.clients.Delete(c.id)
		atomic.AddInt64(&s.clientCount, -1)
		close(c.done)
		_ = c.conn.Close()
		s.logger.Info("Client disconnected",
			log.String("client_id", c.id),
			log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))
	})
}
