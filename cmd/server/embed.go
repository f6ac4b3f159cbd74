package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/corpus"
	"github.com/portfolio-site/backend/internal/embedding"
	"github.com/portfolio-site/backend/internal/storage"
)

var (
	embedSource   string
	embedOutput   string
	embedProvider string
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed the resume corpus",
	Long: `Validates every resume chunk, computes a 384-dimension embedding for each one
and writes the chunks with an added "embedding" field as a JSON array.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVar(&embedSource, "source", "", "chunk file to embed (default RESUME_CORPUS_PATH)")
	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "", "output file (default EMBEDDING_OUTPUT_PATH)")
	embedCmd.Flags().StringVar(&embedProvider, "provider", "", "embedder: local or openai (default EMBEDDING_PROVIDER)")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	source := firstNonEmpty(embedSource, cfg.Resume.CorpusPath)
	output := firstNonEmpty(embedOutput, cfg.Embedding.OutputPath)
	cfg.Embedding.Provider = firstNonEmpty(embedProvider, cfg.Embedding.Provider)

	c, err := corpus.Load(source)
	if err != nil {
		return fmt.Errorf("failed to generate resume embeddings: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}

	store, err := storage.NewFileStorage(output)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := &embedding.Pipeline{
		Embedder: embedder,
		Logger:   logger.WithField("component", "embedding"),
		Progress: cmd.OutOrStdout(),
	}
	chunks, err := pipeline.Run(cmd.Context(), c.Chunks())
	if err != nil {
		return fmt.Errorf("failed to generate resume embeddings: %w", err)
	}

	if err := store.Save(chunks); err != nil {
		return err
	}
	cmd.Printf("\nWrote %d embedded resume chunks to %s.\n", len(chunks), output)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
