package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/config"
)

// Serve runs the HTTP(S) server until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func Serve(ctx context.Context, cfg config.Config, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			reloader, err := NewTLSReloader(ctx, cfg.TLSCertFile, cfg.TLSKeyFile, 5*time.Minute, log)
			if err != nil {
				errCh <- fmt.Errorf("tls: %w", err)
				return
			}
			srv.TLSConfig = reloader.Config()
			log.Info("https listening", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		log.Info("http listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down http server")
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
