package cli

import (
	"context"

	"pneuma/internal/di"
	"pneuma/internal/infrastructure/server"

	"github.com/spf13/cobra"
)

func (c *rootCommand) serveCommand() *cobra.Command {
	var (
		addr    string
		logJSON bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept scripts over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withContainer(cmd, func(ctx context.Context, ct *di.Container) error {
				srv := server.New(ct.Runner, ct.Registry, ct.Logger, server.Config{
					Addr:     addr,
					LogLevel: c.cfg.Log.Level,
					LogJSON:  logJSON,
				})
				return srv.ListenAndServe(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "log requests as JSON")
	return cmd
}
