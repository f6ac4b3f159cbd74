package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/embedding"
	"github.com/portfolio-site/backend/internal/search"
	"github.com/portfolio-site/backend/internal/storage"
)

var (
	similarInput    string
	similarProvider string
	similarLimit    int
)

var similarCmd = &cobra.Command{
	Use:   "similar [question]",
	Short: "Find the embedded chunks closest to a question",
	Long: `Embeds the question with the same embedder used by "embed" and lists the
nearest resume chunks by cosine similarity. The Q&A endpoint does not use this.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVarP(&similarInput, "input", "i", "", "embedded chunk file (default EMBEDDING_OUTPUT_PATH)")
	similarCmd.Flags().StringVar(&similarProvider, "provider", "", "embedder: local or openai (default EMBEDDING_PROVIDER)")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 3, "maximum number of results")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cfg.Embedding.Provider = firstNonEmpty(similarProvider, cfg.Embedding.Provider)

	store, err := storage.NewFileStorage(firstNonEmpty(similarInput, cfg.Embedding.OutputPath))
	if err != nil {
		return err
	}
	defer store.Close()

	chunks, err := store.Load()
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return errors.New("no embedded chunks found; run the embed command first")
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}
	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		contents[i] = ch.Content
	}
	if err := embedder.Prepare(contents); err != nil {
		return err
	}

	query, err := embedder.Embed(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}

	hits := search.TopK(query, chunks, similarLimit)
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, hit := range hits {
		cmd.Printf("[%d] %s (%.4f)\n", i+1, hit.Item.ID, hit.Score)
	}
	return nil
}
