package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stonehenge-collective/bazaarbuddy-go/cmd/file"
	"github.com/stonehenge-collective/bazaarbuddy-go/cmd/watch"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/conf"
	"github.com/stonehenge-collective/bazaarbuddy-go/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bazaarbuddy",
		Short: "Bazaar Buddy CLI",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		watch.Command(settings),
		file.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(settings)
		return nil
	}

	return rootCmd
}

// setupFlags configures the global flags for the root command.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initLogging(settings *conf.Settings) {
	level := logger.LogLevel(settings.Main.Log.Level)
	if settings.Debug {
		level = logger.LogLevelDebug
	}
	logger.InitGlobal(logger.Config{
		Level: level,
		JSON:  settings.Main.Log.JSON,
		File: logger.FileOutput{
			Enabled:    settings.Main.Log.Enabled,
			Path:       settings.Main.Log.Path,
			MaxSizeMB:  settings.Main.Log.MaxSize,
			MaxBackups: settings.Main.Log.MaxBackups,
		},
	})
}
