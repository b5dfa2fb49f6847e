// Package cmd - serve command
package cmd

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapter "cost-projections/adapters/cli"
	httpadapter "cost-projections/adapters/http"
	"cost-projections/internal/config"
	"cost-projections/internal/logging"
)

var (
	serveAddr  string
	serveFlags selectionFlags
)

// serveCmd exposes the pipeline over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP",
	Long: `Start an HTTP server exposing the pipeline.

Endpoints:
  GET  /health
  GET  /api/v1/catalog
  POST /api/v1/projections
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, opts := serveFlags.apply(config.Get())
	c, err := adapter.LoadCatalog(cfg.Data)
	if err != nil {
		return err
	}
	p, err := adapter.ProjectorFor(c, cfg)
	if err != nil {
		return err
	}

	httpCfg := httpadapter.DefaultConfig()
	httpCfg.Address = serveAddr
	srv := httpadapter.New(c, cfg, httpCfg)
	srv.SetProjector(p)
	srv.SetDefaults(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logging.Info("shutting down", zap.String("address", serveAddr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
