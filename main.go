package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medconnect-server/internal/app"
	"medconnect-server/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medconnect-server",
		Short: "Healthcare appointment booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(remindCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the reminder job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables or indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := setup()
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize")
				return err
			}
			defer a.Close(context.Background())

			if err := a.Migrate(cmd.Context()); err != nil {
				logger.Error().Err(err).Msg("migration failed")
				return err
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("migration complete")
			return nil
		},
	}
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one appointment reminder sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := setup()
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize")
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Reminder.Interval)
			defer cancel()
			sent, err := a.Reminder.RunOnce(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("reminder sweep failed")
			} else {
				logger.Info().Int("sent", sent).Msg("reminder sweep finished")
			}

			a.Appointments.Wait()
			if cerr := a.Close(context.Background()); cerr != nil {
				logger.Warn().Err(cerr).Msg("close failed")
			}
			return err
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, logger := setup()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize")
		return err
	}
	if err := a.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	return nil
}

// setup loads the configuration and builds the root logger. Configuration
// errors are fatal.
func setup() (*config.Config, zerolog.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if !cfg.IsProduction() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return cfg, logger
}
