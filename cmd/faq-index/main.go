// Package main provides the faq-index CLI for building the semantic FAQ collection.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/faq-semantic-index/internal/config"
	"github.com/bull/faq-semantic-index/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "faq-index",
	Short: "Semantic FAQ indexing tool",
	Long:  "CLI tool for building and inspecting the semantic FAQ collection in Qdrant",
	// Errors are printed once by main
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(indexCmd, inspectCmd, convertCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func connectQdrant(cfg *config.Config) (*storage.QdrantStorage, error) {
	fmt.Fprintf(os.Stderr, "Connecting to Qdrant at %s:%d...\n", cfg.Qdrant.Host, cfg.Qdrant.Port)
	store, err := storage.NewQdrantStorage(storage.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	return store, nil
}
