// package server contains the router, middleware & OAuth callback handling for the loopback authorization flow
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/shared"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers registered on a [Router].
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// CallbackServer listens on a loopback address for a single OAuth redirect.
type CallbackServer struct {
	addr     string
	handler  *OAuthHandler
	logger   *log.Logger
	srv      *http.Server
	listener net.Listener
}

// NewCallbackServer creates a server on addr serving handler.
func NewCallbackServer(addr string, handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &CallbackServer{addr: addr, handler: handler, logger: logger}
}

// Start binds the address and serves in the background.
func (c *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", shared.ErrAuthFailed, c.addr, err)
	}
	c.listener = ln

	router := NewBasicRouter()
	router.Use(LoggingMiddleware(c.logger))
	router.Handler(c.handler)

	c.srv = &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := c.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("callback server stopped", "error", err)
		}
	}()

	c.logger.Debug("callback server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, which differs from the configured one when port 0 was requested.
func (c *CallbackServer) Addr() string {
	if c.listener == nil {
		return c.addr
	}
	return c.listener.Addr().String()
}

// Wait blocks until the redirect has been handled, ctx is done, or timeout elapses.
func (c *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-c.handler.Result():
		if err := result.Error(); err != nil {
			return nil, err
		}
		return result.Token, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: no authorization callback within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops the server.
func (c *CallbackServer) Shutdown(ctx context.Context) error {
	if c.srv == nil {
		return nil
	}
	return c.srv.Shutdown(ctx)
}

// Capture starts a callback server, calls ready with its address, and waits for one token.
//
// The server is always shut down before Capture returns.
func Capture(ctx context.Context, addr string, handler *OAuthHandler, timeout time.Duration, logger *log.Logger, ready func(addr string) error) (*oauth2.Token, error) {
	cs := NewCallbackServer(addr, handler, logger)
	if err := cs.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cs.Shutdown(shutdownCtx); err != nil {
			cs.logger.Warn("callback server shutdown", "error", err)
		}
	}()

	if ready != nil {
		if err := ready(cs.Addr()); err != nil {
			return nil, err
		}
	}
	return cs.Wait(ctx, timeout)
}
