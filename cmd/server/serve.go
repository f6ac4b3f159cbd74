package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/portfolio-site/backend/internal/api"
	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/corpus"
	"github.com/portfolio-site/backend/internal/engine"
	"github.com/portfolio-site/backend/internal/politeness"
	"github.com/portfolio-site/backend/internal/portfolio"
	"github.com/portfolio-site/backend/internal/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Loads the resume corpus and curated projects, then serves the API until
interrupted. A missing model credential leaves the Q&A endpoint in its offline state.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	logger.Info("Starting Ask My Resume API Service")

	// 1. Corpus
	c, err := corpus.Load(cfg.Resume.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load resume corpus: %w", err)
	}
	logger.WithField("chunks", c.Len()).Info("Loaded resume corpus")

	// 2. Model provider
	llm, err := newProvider(cfg.LLM, logger)
	if err != nil {
		return err
	}

	// 3. Engine
	eng := engine.NewEngine(cfg, logger.WithField("component", "engine"), c, llm)

	// 4. Throttling
	pm := politeness.NewPolitenessManager(cfg.RateLimit, logger.WithField("component", "politeness"))
	if err := pm.Start(); err != nil {
		return err
	}
	defer pm.Stop()

	// 5. Site data
	robots, err := loadRobots(cfg.Server.RobotsPath)
	if err != nil {
		return err
	}
	projects, err := portfolio.Load(cfg.Server.ProjectsPath)
	if err != nil {
		return err
	}

	// 6. API Server
	server := api.NewServer(eng, logger.WithField("component", "api"), pm, robots, projects)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// newProvider builds the model provider. A missing credential is not fatal:
// the engine serves its offline reply instead.
func newProvider(cfg config.LLMConfig, logger *logrus.Entry) (provider.LLMProvider, error) {
	llm, err := provider.New(cfg)
	if errors.Is(err, provider.ErrMissingCredential) {
		logger.WithField("provider", cfg.Provider).Warn("No model credential configured; Ask My Resume is offline")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"provider": llm.Name(), "model": cfg.Model}).Info("Model provider ready")
	return llm, nil
}

// loadRobots parses the robots file at path, using the built-in policy when it is absent.
func loadRobots(path string) (*politeness.RobotsPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read robots.txt: %w", err)
	}
	return politeness.NewRobotsPolicy(string(data))
}
