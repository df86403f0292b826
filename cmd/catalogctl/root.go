package main

import (
	"github.com/pageza/nocapcooking/backend/config"
	"github.com/pageza/nocapcooking/backend/internal/logging"
	"github.com/pageza/nocapcooking/backend/internal/mediagen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the subcommands share: flags and lazily built
// dependencies.
type app struct {
	logLevel        string
	mediaConfigPath string

	logger *zap.Logger
}

func (a *app) mediaConfig() (mediagen.Config, error) {
	return mediagen.Load(a.mediaConfigPath)
}

func (a *app) catalogConfig() (*config.Config, error) {
	return config.LoadConfig()
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Recipe catalog operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Level: a.logLevel, Format: "console"})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.mediaConfigPath, "media-config", "m", "", "Media generation config file (default "+mediagen.DefaultConfigPath+")")

	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newCountCommand(a))
	rootCmd.AddCommand(newUpdateKeysCommand(a))
	rootCmd.AddCommand(newGenAudioCommand(a))
	rootCmd.AddCommand(newGenImagesCommand(a))
	rootCmd.AddCommand(newMissingImagesCommand(a))
	rootCmd.AddCommand(newPromptsCommand(a))
	rootCmd.AddCommand(newTokenCommand(a))

	return rootCmd
}
