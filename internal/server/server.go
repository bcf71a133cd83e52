// Package server provides the TCP command transport for the crawl
// daemon. Clients connect, write one encoded command, and disconnect;
// the transport is strictly fire-and-forget and nothing is ever written
// back on the connection. Accepted commands flow through a bounded
// channel to the dispatch loop, which decouples command intake from
// crawl execution.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"crawld/internal/config"
	"crawld/internal/crawler"
	"crawld/internal/model"
)

// readTimeout bounds how long a connected client may take to send its
// command. A client that connects and stalls would otherwise pin a
// goroutine forever.
const readTimeout = 10 * time.Second

// Handler processes one decoded command. It is the seam between the
// transport and the crawl orchestrator.
type Handler func(ctx context.Context, cmd model.Command) error

// Server accepts command connections and feeds decoded commands into a
// bounded channel.
type Server struct {
	addr     string
	logger   *slog.Logger
	commands chan model.Command

	mu         sync.Mutex
	listenAddr string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for connection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCommandBuffer sets the capacity of the command channel. Commands
// beyond the buffer backpressure their connections until the dispatch
// loop catches up.
func WithCommandBuffer(n int) Option {
	return func(s *Server) {
		s.commands = make(chan model.Command, n)
	}
}

// New creates a Server listening on addr once ListenAndServe is called.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		logger:   slog.Default(),
		commands: make(chan model.Command, config.DefaultCommandBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commands exposes the command stream for the dispatch loop. The
// channel is closed when ListenAndServe returns.
func (s *Server) Commands() <-chan model.Command {
	return s.commands
}

// Addr returns the bound listen address, useful when the configured
// address used port 0. Empty until ListenAndServe has bound.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

// ListenAndServe accepts connections until ctx is cancelled, then
// closes the command channel so the dispatch loop can drain and exit.
// In-flight connection handlers may still be reading when it returns;
// their sends are dropped once the context is done, never sent on the
// closed channel.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("listening for commands", "addr", ln.Addr().String())

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				close(s.commands)
				return nil
			}
			// Transient accept errors are survivable; give the
			// listener a beat and try again.
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			close(s.commands)
			return fmt.Errorf("accept failed: %w", err)
		}

		go s.handleConn(ctx, conn)
	}
}

// handleConn reads one command message from the connection, decodes it,
// and queues it for dispatch. Each connection carries exactly one
// command; whatever happens, the connection is closed afterwards.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// Connection IDs make interleaved connection logs attributable.
	id := uuid.NewString()
	logger := s.logger.With("conn", id, "remote", conn.RemoteAddr().String())

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		logger.Error("failed to set read deadline", "error", err)
		return
	}

	buf := make([]byte, config.DefaultReadBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		logger.Error("failed to read command", "error", err)
		return
	}

	cmd, err := model.DecodeCommand(buf[:n])
	if err != nil {
		logger.Error("failed to decode command", "error", err)
		return
	}

	logger.Debug("received command", "command", cmd.String())

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
	}
}

// Dispatch consumes the command stream and hands each command to the
// handler in its own goroutine, so a slow crawl never blocks the next
// command. Handler errors are logged according to their display policy
// and never stop the loop.
//
// Dispatch returns when the command channel is closed. The closed
// channel is itself an error condition worth one report; looping on it
// would spin, so it is reported once and the loop exits.
func (s *Server) Dispatch(ctx context.Context, handle Handler) {
	for {
		cmd, ok := <-s.commands
		if !ok {
			err := &crawler.Error{Kind: crawler.KindChannelClosed}
			s.logger.Error("command dispatch stopped", "error", err.Error())
			return
		}

		go func() {
			if err := handle(ctx, cmd); err != nil {
				s.logCommandError(cmd, err)
			}
		}()
	}
}

// logCommandError applies the error display policy at the dispatch
// boundary: suppressed kinds stay out of the error log.
func (s *Server) logCommandError(cmd model.Command, err error) {
	var cerr *crawler.Error
	if errors.As(err, &cerr) && !cerr.Kind.Reportable() {
		s.logger.Debug("suppressed command outcome", "command", cmd.String(), "kind", cerr.Kind.String())
		return
	}
	s.logger.Error("command failed", "command", cmd.String(), "error", err.Error())
}
