package shutdown

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const gracePeriod = 10 * time.Second

// Serve runs srv until it fails or ctx is cancelled by SIGINT/SIGTERM, then drains in-flight
// requests.
func Serve(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ServeContext(ctx, srv)
}

func ServeContext(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down REST API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(1)
}
