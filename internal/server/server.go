package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"news-reader/internal/config"
)

// Run serves the proxy on cfg.ListenAddr until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.APIKey() == "" {
		log.Printf("warning: no upstream key configured; %s", cfg.KeyHint())
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting news proxy on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down proxy...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
