// Package cli описывает команды logbook.
package cli

import (
	"context"
	"os"

	"gmp-logbook/internal/app"
	"gmp-logbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "logbook",
		Short:         "GMP equipment and room logbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(os.Getenv("LOG_LEVEL"))
		},
	}

	root.AddCommand(
		newServeCommand(),
		newExportCommand(),
		newUsersCommand(),
		newAuditCommand(),
	)
	return root
}

func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("logbook")
		return 1
	}
	return 0
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openApp читает конфигурацию и поднимает зависимости.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
