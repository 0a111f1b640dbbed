package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/artpar/portfolio/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(load ConfigLoader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public and admin APIs",
		Long:  "Start the HTTP server with the progress websocket and run until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app.WithConfig(cfg))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

func serve(ctx context.Context, opts ...app.Option) error {
	a, err := app.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Logger().Info("starting portfolio server",
		zap.String("storage", a.Config().Storage.Driver),
		zap.String("database", a.Config().Database.Path))
	return a.Run(ctx)
}
