package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/surveyviz/internal/config"
	"github.com/JonMunkholm/surveyviz/internal/logging"
)

type rootOptions struct {
	envFile   string
	logLevel  string
	logFormat string
}

// logger writes diagnostics to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Survey export analysis and charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, err := config.LoadDotEnv(opts.envFile)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with SURVEY_COL_* defaults")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(newAnalyzeCmd(opts))
	return cmd
}
