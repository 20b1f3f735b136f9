// Package cli builds the cobra root command shared by the dbops tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/semmidev/dbops/internal/app"
	"github.com/semmidev/dbops/internal/config"
	"github.com/spf13/cobra"
)

// Action runs one tool against a ready App, writing its report to out.
type Action func(ctx context.Context, a *app.App, out io.Writer) error

func NewCommand(use, short, long string, action Action) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A .env next to the operator's shell may carry DBOPS_* overrides.
			_ = godotenv.Load()

			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			application, err := app.New(cfg, use)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer application.Shutdown()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return action(ctx, application, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to an optional YAML config file")
	flags.String("env-file", "", "application env file holding the connection string (default /www/miaoji/server/.env)")
	flags.String("env-key", "", "variable holding the connection string (default DATABASE_URL)")
	flags.String("mysql", "", "mysql client binary (default mysql)")
	flags.String("mysqldump", "", "mysqldump binary (default mysqldump)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default info)")
	flags.String("log-file", "", "also write JSON logs to this file")

	return cmd
}
