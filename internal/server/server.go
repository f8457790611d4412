package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Server streams simulation frames to websocket clients.
type Server struct {
	httpServer *http.Server
	addr       atomic.Pointer[string]

	// Client management
	clients     sync.Map // map[string]*client
	clientCount int64    // atomic
	dropped     uint64   // atomic
	sent        uint64   // atomic

	latest atomic.Pointer[[]byte]

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	config Config
	logger log.Log

	// mu orders client registration against Stop.
	mu sync.Mutex

	// Background workers
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr string
	MaxClients int

	// SendBuffer is the number of frames queued per client before new
	// frames are dropped for it.
	SendBuffer   int
	WriteTimeout time.Duration

	// Health monitoring
	PingInterval  time.Duration
	ClientTimeout time.Duration

	// Token, when set, must be passed as ?token= by clients.
	Token string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:    "127.0.0.1:8080",
		MaxClients:    1000,
		SendBuffer:    16,
		WriteTimeout:  5 * time.Second,
		PingInterval:  20 * time.Second,
		ClientTimeout: time.Minute,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.MaxClients <= 0:
		return fmt.Errorf("%w: max clients must be positive", ErrInvalidConfig)
	case c.SendBuffer <= 0:
		return fmt.Errorf("%w: send buffer must be positive", ErrInvalidConfig)
	case c.PingInterval <= 0 || c.ClientTimeout <= c.PingInterval:
		return fmt.Errorf("%w: client timeout must exceed a positive ping interval", ErrInvalidConfig)
	}
	return nil
}

// NewServer creates a frame server. A nil logger uses the process logger.
func NewServer(config Config, logger log.Log) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}
	s := &Server{
		config:   config,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))
	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	bound := listener.Addr().String()
	s.addr.Store(&bound)
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", bound))
	return nil
}

// Addr is the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if p := s.addr.Load(); p != nil {
		return *p
	}
	return ""
}

// Stop shuts the listener down and disconnects every client. A stopped
// server cannot be started again.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		s.mu.Unlock()
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)
	close(s.stopChan)
	s.mu.Unlock()
	s.logger.Info("Stopping server")

	err := s.httpServer.Shutdown(ctx)

	s.clients.Range(func(_, value any) bool {
		s.removeClient(value.(*client))
		return true
	})
	s.workerGroup.Wait()

	s.logger.Info("Server stopped", log.Uint64("frames_sent", atomic.LoadUint64(&s.sent)))
	return err
}

// Close stops the server if it is running and marks it closed.
func (s *Server) Close() error {
	if atomic.LoadInt32(&s.running) == 1 {
		return s.Stop(context.Background())
	}
	atomic.StoreInt32(&s.closed, 1)
	return nil
}

// Broadcast queues msg for every connected client and remembers it as the
// latest frame. Clients whose queue is full miss the frame; Broadcast never
// blocks. It returns the number of clients the frame was queued for.
func (s *Server) Broadcast(msg []byte) int {
	s.latest.Store(&msg)
	queued := 0
	s.clients.Range(func(_, value any) bool {
		c := value.(*client)
		select {
		case c.send <- msg:
			queued++
		default:
			atomic.AddUint64(&s.dropped, 1)
		}
		return true
	})
	return queued
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64  `json:"clients"`
	FramesSent  uint64 `json:"frames_sent"`
	Dropped     uint64 `json:"dropped"`
	Running     bool   `json:"running"`
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount: atomic.LoadInt64(&s.clientCount),
		FramesSent:  atomic.LoadUint64(&s.sent),
		Dropped:     atomic.LoadUint64(&s.dropped),
		Running:     atomic.LoadInt32(&s.running) == 1,
	}
}
