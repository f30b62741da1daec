package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("tcp: server closed")

// Config holds the connection limits of the command server.
type Config struct {
	Addr           string
	MaxConnections int
	IdleTimeout    time.Duration
	CommandTimeout time.Duration
	// WriteTimeout bounds each reply, so a client that stops reading
	// gives up its slot.
	WriteTimeout time.Duration
	MaxLineBytes int
}

// Server accepts line-protocol clients, one goroutine per connection, up to
// MaxConnections at a time.
type Server struct {
	cfg        Config
	dispatcher *Dispatcher

	slots    chan struct{}
	nextConn atomic.Uint64
	closing  atomic.Bool

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

func NewServer(cfg Config, dispatcher *Dispatcher) *Server {
	if cfg.MaxConnections < 1 {
		cfg.MaxConnections = 1
	}
	if cfg.MaxLineBytes < 64 {
		cfg.MaxLineBytes = 4096
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		slots:      make(chan struct{}, cfg.MaxConnections),
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on cfg.Addr and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closing.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	logger.Info("Command server listening on %s (max %d connections)", ln.Addr(), s.cfg.MaxConnections)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				logger.Warn("Accept error: %v; retrying in %v", err, backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		select {
		case s.slots <- struct{}{}:
		default:
			s.reject(conn)
			continue
		}

		s.track(conn, true)
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

func (s *Server) reject(conn net.Conn) {
	defer conn.Close()
	logger.Warn("Rejecting %s: connection limit %d reached", conn.RemoteAddr(), s.cfg.MaxConnections)

	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	w := bufio.NewWriter(conn)
	_ = Fail(fmt.Errorf("%w: server is full, try again later", apperror.ErrCapacityExceeded)).WriteTo(w)
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	id := s.nextConn.Add(1)
	log := logger.WithFields(logrus.Fields{
		"conn":   id,
		"remote": conn.RemoteAddr().String(),
	})
	st := &ConnState{}

	defer func() {
		s.dispatcher.Release(context.Background(), st)
		conn.Close()
		s.track(conn, false)
		<-s.slots
		s.wg.Done()
		log.Info("Client disconnected")
	}()

	log.Info("Client connected")

	w := bufio.NewWriter(conn)
	if err := s.reply(conn, w, Response{Lines: []string{Greeting}}); err != nil {
		log.Warnf("Failed to send greeting: %v", err)
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), s.cfg.MaxLineBytes)

	for {
		if !s.armDeadline(conn) {
			return
		}
		if !scanner.Scan() {
			s.readFailed(conn, w, log, scanner.Err())
			return
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CommandTimeout)
		resp := s.dispatcher.Handle(ctx, st, line)
		cancel()

		entry := log.WithFields(logrus.Fields{
			"command": commandName(line),
			"outcome": resp.Status(),
			"latency": time.Since(start),
		})
		if resp.Failed() {
			entry.Warn("Command failed")
		} else {
			entry.Debug("Command handled")
		}

		if err := s.reply(conn, w, resp); err != nil {
			log.Warnf("Failed to write response: %v", err)
			return
		}
		if resp.Close {
			return
		}
	}
}

func (s *Server) reply(conn net.Conn, w *bufio.Writer, resp Response) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return resp.WriteTo(w)
}

// armDeadline sets the idle deadline for the next read unless the server is
// shutting down. It holds mu so Shutdown cannot be overtaken.
func (s *Server) armDeadline(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	return true
}

func (s *Server) readFailed(conn net.Conn, w *bufio.Writer, log *logrus.Entry, err error) {
	switch {
	case err == nil:
		// EOF
	case errors.Is(err, bufio.ErrTooLong):
		log.Warnf("Line longer than %d bytes", s.cfg.MaxLineBytes)
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = Fail(fmt.Errorf("%w: line exceeds %d bytes", apperror.ErrInvalidArgument, s.cfg.MaxLineBytes)).WriteTo(w)
		// Swallow the rest of the oversized input so closing does not reset
		// the connection before the client reads the error.
		_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		_, _ = io.Copy(io.Discard, io.LimitReader(conn, 1<<20))
	case isTimeout(err):
		if !s.closing.Load() {
			log.Info("Closing idle connection")
		}
	default:
		if !s.closing.Load() {
			log.Warnf("Read error: %v", err)
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func commandName(line string) string {
	cmd, _, _ := strings.Cut(strings.TrimSpace(line), ":")
	return strings.ToUpper(cmd)
}

// Addr is the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections is the number of clients currently served.
func (s *Server) ActiveConnections() int {
	return len(s.slots)
}

// Shutdown stops accepting, wakes idle clients and waits for every
// connection to finish its current command. When ctx ends first the
// remaining connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()
		<-done
		return ctx.Err()
	}
}
