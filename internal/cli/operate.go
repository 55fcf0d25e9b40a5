package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/clinic-webhooks/config"
	"github.com/marcelsud/clinic-webhooks/internal/app"
	"github.com/marcelsud/clinic-webhooks/internal/logger"
	"github.com/marcelsud/clinic-webhooks/provisioning"
	"github.com/marcelsud/clinic-webhooks/webhook/postgres"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	provisionFile string
	dropTables    bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one recovery sweep and exit",
	Long: `Re-queue Retrying deliveries that are due and Pending deliveries that
were never picked up. Useful after an outage, when no API instance is
running to sweep on its own. Needs a shared queue (QUEUE=redis) to be of
use to other processes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			queued, err := a.Scheduler.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "re-queued %d deliveries\n", queued)
			return nil
		})
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the subscriptions listed in a provisioning file",
	Long: `Create and activate every subscription of the file that does not exist yet.
Existing subscriptions (same tenant and name) are left untouched.`,
	Example: `  webhookctl provision --file subscriptions.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := provisioning.NewLoader()
		if err := loader.Load(provisionFile); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, err := loader.Apply(ctx, a.Registry, a.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", result.Created, result.Skipped)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the postgres tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		if cfg.Store != config.StorePostgres {
			return fmt.Errorf("migrate needs STORE=%s, got %q", config.StorePostgres, cfg.Store)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := postgres.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer repo.Close(ctx)

		if dropTables {
			if err := repo.DropTables(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tables dropped")
		}
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

// withApp builds the components from configuration without starting the pool
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)

	ctxTimeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Shutdown(ctxTimeout))
}

func init() {
	provisionCmd.Flags().StringVarP(&provisionFile, "file", "f", "subscriptions.yaml", "provisioning file")
	migrateCmd.Flags().BoolVar(&dropTables, "drop", false, "drop the tables first (destroys all data)")

	RootCmd.AddCommand(sweepCmd)
	RootCmd.AddCommand(provisionCmd)
	RootCmd.AddCommand(migrateCmd)
}
