package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"sgpa-scan/api/internal/logger"
)

const shutdownGrace = 10 * time.Second

// New wraps handler in a server with the timeouts both binaries use.
// WriteTimeout is left open because an extraction can take minutes.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// Serve listens on srv.Addr until ctx is done, then drains in-flight requests.
func Serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, srv, ln, log)
}

func ServeListener(ctx context.Context, srv *http.Server, ln net.Listener, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	log.Info("http shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
