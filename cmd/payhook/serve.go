package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payhook/internal/clock"
	"github.com/smallbiznis/payhook/internal/config"
	"github.com/smallbiznis/payhook/internal/migration"
	"github.com/smallbiznis/payhook/internal/observability"
	"github.com/smallbiznis/payhook/internal/payment"
	"github.com/smallbiznis/payhook/internal/ratelimit"
	"github.com/smallbiznis/payhook/internal/server"
	"github.com/smallbiznis/payhook/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			// Core Infrastructure
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			clock.Module,
			migration.Module,

			// Functional Domains
			payment.Module,
			ratelimit.Module,
			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

// RegisterSnowflake returns the node used to mint order receipts.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
