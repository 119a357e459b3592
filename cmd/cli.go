package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/internal/adapters/out/authz"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Last-mile delivery dispatch for laundry orders",
	Long: `dispatch manages the driver pool, assigns drivers to ready orders, tracks
deliveries through pickup and drop-off, and keeps driver earnings and shifts.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRoot(cmd.Context(), func(ctx context.Context, root *CompositionRoot, cfg Config, logger *slog.Logger) error {
			if cfg.Store == StoreFixture {
				if err := postgres.Migrate(root.DB()); err != nil {
					return err
				}
			}
			return serve(ctx, root, cfg, logger)
		})
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the earnings queue worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRoot(cmd.Context(), func(ctx context.Context, root *CompositionRoot, cfg Config, logger *slog.Logger) error {
			logger.InfoContext(ctx, "earnings worker starting", "queue", cfg.QueueConfig().Queue)
			return worker.NewService(cfg.QueueConfig(), root.CreateEarningsConsumer()).Start(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and default access policies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, closer, err := bootstrap()
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := OpenDatabase(cfg)
		if err != nil {
			return err
		}
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if _, err = authz.NewCasbinAuthorizer(db); err != nil {
			return fmt.Errorf("install policies: %w", err)
		}

		logger.InfoContext(cmd.Context(), "schema migrated", "store", cfg.Store)
		return nil
	},
}

var seedOpts SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with fake drivers and ready orders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRoot(cmd.Context(), func(ctx context.Context, root *CompositionRoot, _ Config, _ *slog.Logger) error {
			if err := postgres.Migrate(root.DB()); err != nil {
				return err
			}
			return NewSeeder(root, cmd.OutOrStdout()).Seed(ctx, seedOpts)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	seedCmd.Flags().IntVar(&seedOpts.Drivers, "drivers", 50, "number of drivers")
	seedCmd.Flags().IntVar(&seedOpts.Online, "online", 20, "number of drivers with an open shift")
	seedCmd.Flags().IntVar(&seedOpts.Orders, "orders", 100, "number of ready orders")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 42, "random seed")

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, seedCmd)
}

// Execute runs the CLI until SIGINT or SIGTERM.
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func bootstrap() (Config, *slog.Logger, io.Closer, error) {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return Config{}, nil, nil, err
	}
	logger, closer := NewLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

func withRoot(
	ctx context.Context,
	run func(ctx context.Context, root *CompositionRoot, cfg Config, logger *slog.Logger) error,
) error {
	cfg, logger, closer, err := bootstrap()
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}
	root, err := NewCompositionRoot(cfg, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := root.Close(); closeErr != nil {
			logger.Warn("shutdown left connections open", "error", closeErr)
		}
	}()

	return run(ctx, root, cfg, logger)
}

func serve(ctx context.Context, root *CompositionRoot, cfg Config, logger *slog.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(EchoLogLevel(cfg.Log.Level))
	e.Use(middleware.Recover(), middleware.RequestID())

	root.CreateHTTPServer().RegisterRoutes(e, root.Registry())

	jobManager := root.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	go func() {
		if err := root.RunRelay(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "snapshot relay stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http server starting", "port", cfg.HTTP.Port, "store", cfg.Store)
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTP.Port))
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
