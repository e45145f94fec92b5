package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ozoops/health5070/internal/httpapi"
	"github.com/ozoops/health5070/internal/pipeline"
	"github.com/ozoops/health5070/internal/ports/adapters/recordstore"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the production API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := cfg.Logger
			defer func() { _ = log.Sync() }()
			if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
				cfg.Server.Addr = f.Value.String()
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prod, err := pipeline.New(ctx, cfg)
			if err != nil {
				return err
			}
			app := httpapi.NewApp(httpapi.NewHandler(prod, recordstore.New(cfg.Store.Path), log, timeout))

			go func() {
				<-ctx.Done()
				log.Info("shutting down")
				_ = app.ShutdownWithTimeout(30 * time.Second)
			}()
			log.Info("listening", zap.String("addr", cfg.Server.Addr))
			return app.Listen(cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("out", "generated_videos", "Output directory")
	cmd.Flags().Duration("timeout", time.Hour, "Per-request production timeout")
	return cmd
}
