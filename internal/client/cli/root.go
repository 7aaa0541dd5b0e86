package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailygrace/dailygrace/internal/client/app"
	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/config"
	"github.com/dailygrace/dailygrace/internal/client/httpapi"
	"github.com/dailygrace/dailygrace/internal/cloud"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/spf13/cobra"
)

// newApp is swapped out by tests.
var newApp = app.New

// Execute loads the configuration and runs the command named by args. The
// context is cancelled on SIGINT or SIGTERM.
func Execute(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(cfg)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           common.AppName,
		Short:         "Daily Grace: an offline-first QT, prayer and gratitude journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app.App) error {
				stdinShell(a).Run(ctx)
				return nil
			})
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(newServeCommand(cfg), newMigrateCommand(cfg))
	return root
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal as JSON to a local UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app.App) error {
				return httpapi.New(a).Run(ctx, cfg.HTTPAddr)
			})
		},
	}
}

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local database, and the cloud schema when configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := client.InitDatabase(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "local database %s is up to date\n", cfg.DBPath)

			if !cfg.CloudEnabled() {
				return nil
			}
			b, err := cloud.Open(ctx, app.CloudOptions(cfg), logging.Discard())
			if err != nil {
				return err
			}
			defer b.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "cloud schema is up to date")
			return nil
		},
	}
}

// withApp builds the client, restores the session and closes everything
// once fn returns.
func withApp(ctx context.Context, cfg *config.Config, fn func(context.Context, *app.App) error) (err error) {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	a.Start(ctx)
	return fn(ctx, a)
}
