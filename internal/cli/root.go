package cli

import (
	"context"

	"github.com/artpar/portfolio/internal/app"
	"github.com/artpar/portfolio/internal/blob"
	"github.com/artpar/portfolio/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "portfolio",
		Short:   "Portfolio - content backend for a thumbnail portfolio site",
		Long:    "Portfolio serves the gallery, showcase and admin APIs of a thumbnail designer's site.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	load := func() (config.Config, error) {
		return config.Load(configPath)
	}

	cmd.AddCommand(NewServeCommand(load))
	cmd.AddCommand(NewSearchCommand(load))
	cmd.AddCommand(NewEstimateCommand(load))
	cmd.AddCommand(NewAdminCommand(load))
	cmd.AddCommand(NewBrowseCommand(load))

	return cmd
}

// ConfigLoader resolves the configuration when a command runs.
type ConfigLoader func() (config.Config, error)

// openLocal opens the database without touching remote media storage. Commands
// that only read or manage users never upload.
func openLocal(ctx context.Context, load ConfigLoader) (*app.App, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx,
		app.WithConfig(cfg),
		app.WithLogger(zap.NewNop()),
		app.WithBlobStore(blob.NewMemoryStore(cfg.Storage.PublicBaseURL)))
}
