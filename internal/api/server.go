// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package api is the dispatcher: it accepts TCP connections, parses requests,
routes them through their composed chains and writes the responses back.

Architecture:

  - Each connection runs on its own goroutine with a per-request deadline.
  - Health probes bypass routing and every guard.
  - Nothing a handler does (error or panic) can stop the accept loop.
*/
package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/config"
	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/platform/respond"
	"github.com/zlovtnik/iead-sub004/internal/router"
	"github.com/zlovtnik/iead-sub004/internal/wire"
	"github.com/zlovtnik/iead-sub004/pkg/uuidv7"
)

// ErrServerClosed is returned by [Server.Serve] once its listener is closed.
var ErrServerClosed = errors.New("api: server closed")

// # Server Definitions

// Handlers groups the raw handlers that bypass the route table.
type Handlers struct {
	// Liveness is the /health handler and always answers 200 while the process is alive.
	Liveness wire.Handler

	// Readiness is the /ready handler and answers 200 only when every dependency is healthy.
	Readiness wire.Handler
}

// Server owns the route table and the connection lifecycle.
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	routes *router.Router
	health map[string]wire.Handler
	logger *slog.Logger

	connectionTimeout time.Duration
	maxBodyBytes      int64
	trustedProxies    wire.TrustedProxies

	mu         sync.Mutex
	listeners  map[net.Listener]struct{}
	conns      map[net.Conn]bool // true while a request is being served
	inShutdown atomic.Bool
	active     sync.WaitGroup
}

// NewServer constructs a dispatcher over routes.
func NewServer(cfg *config.Config, logger *slog.Logger, routes *router.Router, h Handlers) *Server {
	server := &Server{
		routes:            routes,
		health:            make(map[string]wire.Handler),
		logger:            logger,
		connectionTimeout: cfg.ConnectionTimeout,
		maxBodyBytes:      cfg.MaxBodyBytes,
		listeners:         make(map[net.Listener]struct{}),
		conns:             make(map[net.Conn]bool),
	}

	// Config.Validate has already rejected malformed entries.
	if trusted, err := wire.ParseTrustedProxies(cfg.TrustedProxies); err == nil {
		server.trustedProxies = trusted
	} else {
		logger.Warn("trusted_proxies_ignored", slog.Any("error", err))
	}

	if h.Liveness != nil {
		server.health["/health"] = h.Liveness
	}
	if h.Readiness != nil {
		server.health["/ready"] = h.Readiness
	}

	return server
}

// # Server Lifecycle

// ListenAndServe listens on addr and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api: listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

/*
Serve accepts connections on listener until it is closed or ctx is done.

Description: Temporary accept failures (e.g. file descriptor exhaustion)
are retried with a backoff doubling from 5ms to 1s, so only closing the
listener ends the loop.

Returns:
  - error: Always non-nil; ErrServerClosed after a normal close
*/
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if !s.trackListener(listener, true) {
		_ = listener.Close()
		return ErrServerClosed
	}
	defer s.trackListener(listener, false)

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	s.logger.Info("server_listening", slog.String("addr", listener.Addr().String()))

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.inShutdown.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			if backoff == 0 {
				backoff = constants.AcceptBackoffMin
			} else {
				backoff = min(backoff*2, constants.AcceptBackoffMax)
			}
			s.logger.Warn("accept_failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.trackConn(conn, true) {
			_ = conn.Close()
			continue
		}
		go s.serveConn(ctx, conn)
	}
}

// Shutdown stops accepting, closes idle connections and waits for in-flight
// requests to finish. Connections still busy when ctx ends are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)

	s.mu.Lock()
	for listener := range s.listeners {
		_ = listener.Close()
	}
	for conn, busy := range s.conns {
		if !busy {
			_ = conn.Close()
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) trackListener(listener net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !add {
		delete(s.listeners, listener)
		return true
	}
	if s.inShutdown.Load() {
		return false
	}
	s.listeners[listener] = struct{}{}
	return true
}

// trackConn registers or forgets conn. Registration also counts it in
// s.active under s.mu, so Shutdown never waits on a counter that is about to grow.
func (s *Server) trackConn(conn net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !add {
		delete(s.conns, conn)
		return true
	}
	if s.inShutdown.Load() {
		return false
	}
	s.conns[conn] = false
	s.active.Add(1)
	return true
}

func (s *Server) setBusy(conn net.Conn, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[conn]; ok {
		s.conns[conn] = busy
	}
}

// # Connection Handling

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.active.Done()
	defer s.trackConn(conn, false)
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		if err := conn.SetDeadline(time.Now().Add(s.connectionTimeout)); err != nil {
			return
		}

		request, err := wire.Parse(reader, remoteAddr, s.maxBodyBytes)
		if err != nil {
			s.rejectUnparsed(writer, remoteAddr, err)
			return
		}
		request.ResolveClientIP(s.trustedProxies)
		s.setBusy(conn, true)

		requestCtx, cancel := context.WithTimeout(ctx, constants.GlobalRequestTimeout)
		response := s.Dispatch(request.WithContext(requestCtx))
		cancel()

		closing := request.Close || s.inShutdown.Load()
		if err := wire.Write(writer, response, request.Method, closing); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
		s.setBusy(conn, false)

		if closing {
			return
		}
	}
}

// rejectUnparsed answers a malformed request with a generic 400. Clean
// closes and deadline expiries end the connection silently.
func (s *Server) rejectUnparsed(writer *bufio.Writer, remoteAddr string, err error) {
	if errors.Is(err, io.EOF) {
		return
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return
	}

	if !wire.IsMalformed(err) {
		return
	}

	s.logger.Warn("malformed_request", slog.String("ip", remoteAddr), slog.Any("error", err))

	if err := wire.Write(writer, respond.ErrorResponse(apperr.Malformed(err)), http.MethodGet, true); err == nil {
		_ = writer.Flush()
	}
}

// # Request Dispatch

/*
Dispatch runs one parsed request through the pipeline and always returns a
response.

# Flow
 1. Assign a request id and a request-scoped logger.
 2. Answer OPTIONS preflights with 204.
 3. Serve health probes directly.
 4. Match the route: 404, 405 with Allow, or the composed chain.
 5. Convert errors and panics into JSON error responses.
*/
func (s *Server) Dispatch(request *wire.Request) (response *wire.Response) {
	startTime := time.Now()

	requestID := request.Header.Get(constants.HeaderXRequestID)
	if requestID == "" {
		requestID = uuidv7.New()
	}

	requestLogger := s.logger.With(
		slog.String("request_id", requestID),
		slog.String("method", request.Method),
		slog.String("path", request.Path),
		slog.String("ip", request.ClientIP()),
	)

	ctx := ctxutil.WithRequestID(request.Context(), requestID)
	ctx = ctxutil.WithLogger(ctx, requestLogger)
	request = request.WithContext(ctx)

	defer func() {
		if recovered := recover(); recovered != nil {
			stackTrace := make([]byte, 4096)
			length := runtime.Stack(stackTrace, false)

			requestLogger.ErrorContext(ctx, "panic_recovered",
				slog.Any("error", recovered),
				slog.String("stack", string(stackTrace[:length])),
			)
			response = respond.ErrorResponse(apperr.Internal(fmt.Errorf("panic: %v", recovered)))
		}

		response.Header.Set(constants.HeaderXRequestID, requestID)
		applyCORS(request, response)

		logLevel := slog.LevelInfo
		if response.Status >= 500 {
			logLevel = slog.LevelError
		} else if response.Status >= 400 {
			logLevel = slog.LevelWarn
		}

		requestLogger.Log(ctx, logLevel, "http_request_finished",
			slog.Int("status", response.Status),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
			slog.String("user_agent", request.Header.Get("User-Agent")),
		)
	}()

	return s.route(request)
}

func (s *Server) route(request *wire.Request) *wire.Response {
	if request.Method == http.MethodOptions {
		return respond.NoContent()
	}

	if handler, ok := s.health[request.Path]; ok && (request.Method == http.MethodGet || request.Method == http.MethodHead) {
		return s.serve(handler, request)
	}

	result := s.routes.Match(request.Path, request.Method)
	switch result.Kind {
	case router.NotFound:
		return respond.Error(request, apperr.RouteNotFound())
	case router.MethodNotAllowed:
		return respond.Error(request, apperr.MethodNotAllowed(result.Allowed))
	}

	request.Captures = result.Captures
	request.PathParams = result.Params
	return s.serve(result.Handler, request)
}

func (s *Server) serve(handler wire.Handler, request *wire.Request) *wire.Response {
	response, err := handler.Serve(request)
	if err != nil {
		return respond.Error(request, err)
	}
	if response == nil {
		return respond.Error(request, errors.New("handler returned no response"))
	}
	if response.Header == nil {
		response.Header = make(http.Header)
	}
	return response
}

// # Cross-Origin Resource Sharing

// applyCORS echoes the Origin back, with the preflight headers on OPTIONS.
// A preflight always carries the permissive set; without an Origin it allows "*".
func applyCORS(request *wire.Request, response *wire.Response) {
	origin := request.Header.Get(constants.HeaderOrigin)
	preflight := request.Method == http.MethodOptions
	if origin == "" && !preflight {
		return
	}

	header := response.Header
	if origin == "" {
		header.Set("Access-Control-Allow-Origin", "*")
	} else {
		header.Set("Access-Control-Allow-Origin", origin)
		header.Add("Vary", "Origin")
	}
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, Retry-After")

	if preflight {
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
		header.Set("Access-Control-Max-Age", "300")
	}
}
