package redisserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv/internal/command"
	"github.com/yndnr/respkv/internal/protocol/connection"
	"github.com/yndnr/respkv/internal/protocol/frame"
	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds the wait for the rest of a partially received
	// frame. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one reply. Zero disables it.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next command. Zero disables it.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP.
	// Zero disables rate limiting.
	RateLimit float64
	// MaxConnections caps concurrent clients. Zero means unlimited.
	MaxConnections int
}

// DefaultConfig returns the default configuration: listen on 127.0.0.1:6378
// with no deadlines and no limits.
func DefaultConfig() *Config {
	return &Config{
		Addr: "127.0.0.1:6378",
	}
}

// Server accepts RESP clients and serves commands against a store.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	limiter *ipLimiter
	metrics *metric.Registry
	logger  logger.Logger

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*conn]struct{}
	running atomic.Bool
	active  atomic.Int64
	wg      sync.WaitGroup
}

// conn is one client connection.
type conn struct {
	netConn net.Conn
	frames  *connection.Connection
	id      string
	remote  string

	closed atomic.Bool
}

func newConn(c net.Conn) *conn {
	return &conn{
		netConn: c,
		frames:  connection.New(c),
		id:      logger.NewConnID(),
		remote:  c.RemoteAddr().String(),
	}
}

func (c *conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// New creates a server dispatching commands to store. metrics and log may
// be nil.
func New(cfg *Config, store storage.Store, metrics *metric.Registry, log logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "redis")

	return &Server{
		cfg:     cfg,
		handler: NewCommandHandler(store, metrics, log),
		limiter: newIPLimiter(cfg.RateLimit),
		metrics: metrics,
		logger:  log,
		conns:   make(map[*conn]struct{}),
	}
}

// Listen binds the listen address without accepting yet.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener if needed and serves in the background.
// Accept errors after startup are logged.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr() == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Serve(ctx); err != nil {
			s.logger.Error("redis server stopped", "error", err)
		}
	}()
	return nil
}

// Serve accepts connections until the listener is closed by Shutdown or ctx
// is cancelled. Listen must have been called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("redisserver: Serve called before Listen")
	}

	s.running.Store(true)
	s.logger.Info("redis server listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	return s.acceptLoop(ctx, ln)
}

// Shutdown stops accepting, closes open connections and waits for their
// goroutines to finish or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	s.mu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		c := newConn(nc)
		if !s.admit(c) {
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(c)
			s.serveConn(ctx, c)
		}()
	}
}

// admit registers c, or refuses it when the connection limit is reached.
func (s *Server) admit(c *conn) bool {
	if limit := s.cfg.MaxConnections; limit > 0 && s.active.Load() >= int64(limit) {
		s.logger.Warn("connection refused", "remote", c.remote, "reason", "max_connections")
		if s.metrics != nil {
			s.metrics.RecordRejected("max_connections")
		}
		s.setWriteDeadline(c)
		_ = c.frames.WriteFrame(frame.Error("ERR max number of clients reached"))
		_ = c.Close()
		return false
	}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.active.Add(1)
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
	}
	return true
}

func (s *Server) release(c *conn) {
	_ = c.Close()
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.active.Add(-1)
	if s.metrics != nil {
		s.metrics.ConnectionClosed()
	}
}

func (s *Server) serveConn(ctx context.Context, c *conn) {
	ctx = logger.WithConnID(logger.WithLogger(ctx, s.logger.With("remote", c.remote)), c.id)
	log := logger.L(ctx)
	log.Debug("connection accepted")

	ip := remoteIP(c.remote)
	for {
		if err := s.setReadDeadline(c); err != nil {
			return
		}

		f, err := c.frames.ReadFrame()
		if err != nil {
			s.handleReadError(c, log, err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordFrameIn()
		}

		var reply frame.Frame
		if !s.limiter.allow(ip) {
			reply = frame.Error("ERR rate limit exceeded")
		} else if cmd, err := command.FromFrame(f); err != nil {
			log.Debug("invalid command", "error", err)
			reply = errorReply("ERR " + command.ErrorMessage(err))
		} else {
			reply = s.handler.Handle(ctx, cmd)
		}

		if err := s.reply(c, reply); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

// handleReadError logs why the connection ends and, for malformed input,
// tells the client before closing.
func (s *Server) handleReadError(c *conn, log logger.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("connection closed by client")
	case errors.Is(err, connection.ErrConnectionReset):
		log.Debug("connection reset mid-frame", "buffered", c.frames.Buffered())
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
	case errors.Is(err, frame.ErrLimitExceeded):
		log.Warn("protocol limit exceeded", "error", err)
		if s.metrics != nil {
			s.metrics.IncProtocolError()
		}
		_ = s.reply(c, frame.Error("ERR protocol limit exceeded"))
	case errors.Is(err, frame.ErrProtocol):
		log.Warn("protocol error", "error", err)
		if s.metrics != nil {
			s.metrics.IncProtocolError()
		}
		_ = s.reply(c, errorReply("ERR protocol error: "+err.Error()))
	default:
		log.Debug("connection read error", "error", err)
	}
}

func (s *Server) reply(c *conn, f frame.Frame) error {
	s.setWriteDeadline(c)
	if err := c.frames.WriteFrame(f); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordFrameOut()
	}
	return nil
}

// setReadDeadline applies IdleTimeout while waiting for a new command and
// ReadTimeout while part of one is buffered.
func (s *Server) setReadDeadline(c *conn) error {
	timeout := s.cfg.IdleTimeout
	if c.frames.Buffered() > 0 || timeout == 0 {
		timeout = s.cfg.ReadTimeout
	}
	if timeout <= 0 {
		return c.netConn.SetReadDeadline(time.Time{})
	}
	return c.netConn.SetReadDeadline(time.Now().Add(timeout))
}

func (s *Server) setWriteDeadline(c *conn) {
	if s.cfg.WriteTimeout > 0 {
		_ = c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
}

// remoteIP strips the port from a remote address.
func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
