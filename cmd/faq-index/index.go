package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bull/faq-semantic-index/internal/embedding"
	"github.com/bull/faq-semantic-index/internal/faq"
	"github.com/bull/faq-semantic-index/internal/indexer"
	"github.com/bull/faq-semantic-index/internal/storage"
)

var noProgress bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the FAQ collection from the FAQ file",
	Long: `Drops and recreates the FAQ collection from the grouped FAQ file.

This command:
1. Loads and flattens the FAQ file (records with empty fields are skipped)
2. Embeds every question with the configured backend
3. Recreates the collection sized to the embedding dimension
4. Upserts one point per record, with id = position in the file

Nothing in Qdrant is changed if loading or embedding fails.

Environment variables:
  FAQ_PATH           FAQ file (default: data/faq.json)
  COLLECTION_NAME    Collection to rebuild (default: faq_semantic)
  DISTANCE           cosine, euclid or dot (default: cosine)
  EMBEDDING_BACKEND  local, remote or openai (default: local)
  EMBEDDING_URL      Remote embedding service (default: http://localhost:11434)
  QDRANT_HOST        Qdrant hostname (default: localhost)
  QDRANT_PORT        Qdrant gRPC port (default: 6334)`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	distance, err := storage.ParseDistance(cfg.Index.Distance)
	if err != nil {
		return err
	}

	// 1. Load the FAQ file before touching the store
	groups, err := faq.LoadFile(cfg.Index.FAQPath)
	if err != nil {
		return fmt.Errorf("failed to load FAQ file: %w", err)
	}

	// 2. Backend and store
	backend, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return fmt.Errorf("failed to create embedding backend: %w", err)
	}

	store, err := connectQdrant(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 3. Run the pipeline
	opts := indexer.Options{
		Collection: cfg.Index.Collection,
		Distance:   distance,
		BatchSize:  cfg.Index.BatchSize,
	}
	var bar *progressbar.ProgressBar
	if !noProgress {
		opts.OnProgress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("Embedding"),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(os.Stderr)
					}),
				)
			}
			bar.Set(done)
		}
	}

	pipeline := indexer.NewPipeline(backend, store, opts, logger)
	report, err := pipeline.IndexAll(ctx, groups)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	// 4. Print results
	fmt.Printf("Indexed %d points into %s\n", report.PointCount, report.Collection)
	fmt.Printf("  Dimension: %d (%s)\n", report.Dimension, report.Distance)
	if report.Skipped > 0 {
		fmt.Printf("  Skipped: %d incomplete records\n", report.Skipped)
	}
	fmt.Printf("  Duration: %s\n", report.Duration.Round(time.Millisecond))
	return nil
}
