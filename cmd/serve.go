package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/citymap/internal/config"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/server"
)

var (
	servePort int
	serveAttr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page, map and charts over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		attr, err := model.ParseAttribute(serveAttr)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port

		srv, err := newHTTPServer(ctx, cfg, attr)
		if err != nil {
			return err
		}
		return serve(ctx, srv, cfg.Server.ShutdownTimeout)
	},
}

// newHTTPServer prepares the data once and wraps the handler in an
// http.Server listening on the configured port.
func newHTTPServer(ctx context.Context, c *config.Config, attr model.Attribute) (*http.Server, error) {
	p, err := prepare(ctx, c, "serve")
	if err != nil {
		return nil, err
	}
	s := server.New(p, serverOptions(c, attr))
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveAttr, "attr", string(model.AttrPopulation), "attribute shown when a request names none")
	rootCmd.AddCommand(serveCmd)
}
