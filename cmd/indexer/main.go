package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/VioletCranberry/cocosearch/internal/config"
	"github.com/VioletCranberry/cocosearch/internal/embed"
	"github.com/VioletCranberry/cocosearch/internal/indexer"
	"github.com/VioletCranberry/cocosearch/internal/store"
)

func main() {
	fs := pflag.NewFlagSet("cocosearch-indexer", pflag.ExitOnError)

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	zlog.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if strings.TrimSpace(cfg.IndexName) == "" {
		log.Fatal("--index is required")
	}
	if err := store.ValidateIndexName(cfg.IndexName); err != nil {
		log.Fatalf("invalid index name: %v", err)
	}

	clientConfig := &embed.ClientConfig{
		Provider:  embed.Provider(strings.ToLower(cfg.EmbedProvider)),
		Endpoint:  cfg.EmbedURL,
		Model:     cfg.EmbedModel,
		Dim:       cfg.Dim,
		APIKey:    cfg.APIKey,
		ProjectID: cfg.ProjectID,
		Location:  cfg.Location,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	client, err := embed.NewClient(ctx, clientConfig)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	if client.Dim() == 0 {
		log.Fatal("embedding dimension must be set")
	}

	ix := indexer.New(st, client, cfg.RepoRoot, cfg.IndexName, cfg.ChunkSize, cfg.ChunkOverlap)
	ix.Workers = cfg.Workers

	stats, err := ix.Run(ctx)
	if err != nil {
		log.Fatalf("indexing failed: %v", err)
	}
	zlog.Info().
		Str("index", cfg.IndexName).
		Int("insertions", stats.Insertions).
		Int("updates", stats.Updates).
		Int("deletions", stats.Deletions).
		Msg("indexing complete")
}
