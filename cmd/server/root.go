package main

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/portfolio-site/backend/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "ask-resume",
	Short: "Ask My Resume backend",
	Long: `Serves the portfolio API: resume Q&A, curated projects and service status.
Also hosts the offline jobs that embed the resume corpus.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return config.LoadDotEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
}

// newLogger builds the process logger from cfg. Unknown levels fall back to info.
func newLogger(cfg config.LogConfig, out io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger.WithField("service", "ask-resume")
}
