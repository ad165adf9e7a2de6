package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/PratikDhanave/dtconn-relay/internal/auth"
	"github.com/PratikDhanave/dtconn-relay/internal/config"
	"github.com/PratikDhanave/dtconn-relay/internal/httpserver"
	"github.com/PratikDhanave/dtconn-relay/internal/logging"
	"github.com/PratikDhanave/dtconn-relay/internal/warehouse"
)

var (
	version = "dev"
)

func init() {
	slog.SetDefault(logging.New(os.Stderr, slog.LevelInfo))
}

func main() {
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewServeCommand(), NewSignCommand(), NewSendCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error(fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

// NewRootCommand builds the top-level command; it only prints help.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   path.Base(os.Args[0]),
		Short: "relay signed monitoring webhooks into a warehouse table",
		Long: `dtconn-relay accepts signed event notifications on POST /dtconn,
verifies the x-dt-signature token and appends one row per event to a
BigQuery (or Postgres) table.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
}

var notifyContext = signal.NotifyContext

// interruptContext is cancelled by the first SIGINT. The handler is released
// right away so a second SIGINT during the drain kills the process.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := notifyContext(parent, os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// NewServeCommand runs the relay until SIGINT.
// Configuration comes from the environment only; see internal/config.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the webhook relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
			slog.SetDefault(logger)
			logger.Info("starting dtconn-relay",
				"version", version,
				"driver", cfg.WarehouseDriver,
				"project", cfg.ProjectID,
				"dataset", cfg.DatasetID,
				"table", cfg.TableID,
			)

			// The client outlives the interrupt so draining inserts can still authenticate.
			wh, err := warehouse.Open(context.Background(), cfg)
			if err != nil {
				return errors.Wrap(err, "create warehouse client")
			}
			defer wh.Close()

			ctx, stop := interruptContext(context.Background())
			defer stop()

			verifier := auth.NewVerifier(cfg.SignatureKey, logger)
			srv := httpserver.New(cfg, httpserver.NewRouter(verifier, wh, logger), logger)
			return srv.Run(ctx)
		},
	}
}
