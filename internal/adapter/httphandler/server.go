package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

type ServerOpt func(*serverOpts)

type serverOpts struct {
	requestTimeout time.Duration
	idleTimeout    time.Duration
}

// RequestTimeoutOpt bounds a whole request, body included. Exports
// are rendered in memory, so it also bounds the spreadsheet build.
func RequestTimeoutOpt(d time.Duration) ServerOpt {
	return func(o *serverOpts) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

func IdleTimeoutOpt(d time.Duration) ServerOpt {
	return func(o *serverOpts) {
		if d > 0 {
			o.idleTimeout = d
		}
	}
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(addr string, handler http.Handler, opts ...ServerOpt) HTTPServer {
	o := serverOpts{
		requestTimeout: defaultRequestTimeout,
		idleTimeout:    defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(handler, o.requestTimeout, "unavailable"),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       o.idleTimeout,
	}
	return HTTPServer{s}
}

// Run listens on the configured address and serves until Close.
// stopFn is called when serving ends for any reason.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"

	defer stopFn()
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		slog.Error("failed to listen", "op", op, "addr", s.httpServer.Addr, "err", err)
		return
	}
	s.Serve(ln)
}

// Serve accepts connections on ln until Close.
func (s HTTPServer) Serve(ln net.Listener) {
	const op = "HTTPServer.Serve"
	log := slog.With("op", op)

	log.Info("listening", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("unexpected servers shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
