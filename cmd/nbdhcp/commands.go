package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/api"
	"github.com/jbweber/homelab/nbdhcp/internal/config"
	"github.com/jbweber/homelab/nbdhcp/internal/logging"
	"github.com/jbweber/homelab/nbdhcp/internal/migrations"
)

const shutdownTimeout = 10 * time.Second

// cli carries state resolved by the root command's pre-run hook
type cli struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "nbdhcp",
		Short:         "DHCP server and reservation registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "path to a YAML config file")
	flags.String("db-path", "", "SQLite database path (default ~/nbdhcp/data/nbdhcp.db)")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(c.newServeCmd(), c.newMigrateCmd())
	return root
}

// load binds the persistent flags, resolves the configuration and builds the logger
func (c *cli) load(cmd *cobra.Command) error {
	for key, flag := range map[string]string{"db_path": "db-path", "log_level": "log-level", "port": "port"} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().String("port", "", "listen port (default 8080)")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
func (c *cli) serve(ctx context.Context) error {
	ds, err := c.cfg.InitializeDatabase()
	if err != nil {
		return err
	}
	defer ds.Close()

	a := api.NewAPI(ds, c.logger)
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + c.cfg.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("starting nbdhcp", zap.String("addr", srv.Addr), zap.String("db_path", c.cfg.DBPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (c *cli) newMigrateCmd() *cobra.Command {
	var rollbackTo int64

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.cfg.InitializeDatabase()
			if err != nil {
				return err
			}
			defer ds.Close()

			migrator := migrations.NewMigrator(ds.DB)
			for _, m := range migrations.All() {
				migrator.AddMigration(m)
			}

			if cmd.Flags().Changed("rollback-to") {
				if err := migrator.RollbackTo(rollbackTo); err != nil {
					return err
				}
				c.logger.Info("rolled back schema", zap.Int64("target", rollbackTo))
			}

			version, err := migrator.GetCurrentVersion()
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().Int64Var(&rollbackTo, "rollback-to", 0, "revert migrations newer than this version after migrating")
	return cmd
}
