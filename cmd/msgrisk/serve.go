package main

import (
	"github.com/spf13/cobra"

	"github.com/antifraud/msgrisk/internal/bootstrap"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.NewApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
