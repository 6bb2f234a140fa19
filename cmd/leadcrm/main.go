// @title                       Lead CRM API
// @version                     1.0
// @description                 User signup/login with bearer tokens and owner-scoped lead management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadcrm/internal/app"
	"leadcrm/internal/config"
	"leadcrm/internal/logger"
	"leadcrm/internal/repositories"
	"leadcrm/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "leadcrm",
		Short:         "lead CRM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (optional; env overrides it)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg, log)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "create the users and leads tables (postgres and pgx drivers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			switch cfg.Store.Driver {
			case config.DriverPostgres, config.DriverPGX:
			default:
				return fmt.Errorf("migrate needs a SQL store driver, got %q; apply the schema through the Supabase dashboard instead", cfg.Store.Driver)
			}
			db, err := repositories.OpenSQL(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repositories.Migrate(cmd.Context(), db, cfg.Store.UsersTable, cfg.Store.LeadsTable); err != nil {
				return err
			}
			log.Info("schema applied",
				zap.String("users_table", cfg.Store.UsersTable),
				zap.String("leads_table", cfg.Store.LeadsTable),
			)
			return nil
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "print a bcrypt hash, reading the password from stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, hashCmd)
	rootCmd.SetContext(context.Background())
	return rootCmd
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("config loaded",
		zap.String("config", configPath),
		zap.String("store", cfg.Store.Driver),
		zap.Int("port", cfg.Server.Port),
	)
	return cfg, log, nil
}
