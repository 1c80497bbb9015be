package cli

import (
	"io"

	"github.com/soyeahso/reviewbot/internal/config"
	"github.com/soyeahso/reviewbot/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded before every command
	paths   config.Paths
	cfg     config.Config
	loadErr error
	log     *logging.Logger
	logFile io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewbot",
		Short: "reviewbot: conversational LLM sessions for code review",
		Long: "reviewbot keeps conversations with an LLM provider. OpenAI models keep the\n" +
			"thread across calls; Gemini models answer every message independently.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			cfg, loadErr = config.Load(paths.Config)
			if loadErr != nil {
				cfg = config.Defaults()
			}

			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			var w io.Writer
			if cfg.Logging.File != "" {
				w, logFile, err = logging.OpenFile(cfg.Logging.File, cfg.Logging.ConsoleStyle)
				if err != nil {
					return err
				}
			}
			log = logging.NewWithStyle(w, level, cfg.Logging.ConsoleStyle)

			if loadErr != nil {
				log.Warn().Err(loadErr).Str("path", paths.Config).Msg("config not loaded, using defaults")
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logFile != nil {
				err := logFile.Close()
				logFile = nil
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.reviewbot/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTranscriptCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
