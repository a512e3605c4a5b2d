// Command atlus turns documents into a linked knowledge graph.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlus-labs/atlus/internal/adapters/driven/ai"
	"github.com/atlus-labs/atlus/internal/adapters/driven/config/file"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/memory"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/postgres"
	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/sqlite"
	"github.com/atlus-labs/atlus/internal/adapters/driving/cli"
	"github.com/atlus-labs/atlus/internal/config"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/services"
	"github.com/atlus-labs/atlus/internal/logger"
	"github.com/atlus-labs/atlus/internal/normalisers"
	"github.com/atlus-labs/atlus/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the services.
func bootstrap(ctx context.Context, opts cli.BootOptions) (*cli.Services, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}
	// Config commands must work even when the file fails validation.
	if opts.ConfigOnly {
		return &cli.Services{Config: configStore}, nil
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := logger.SetFormat(cfg.Log.Format); err != nil {
		return nil, err
	}
	logger.SetVerbose(opts.Verbose || cfg.Log.Verbose)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(cfg.Prompts.Dir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening prompt store: %w", err)
	}

	strategies := ai.Build(ctx, ai.Settings{
		Embedding: cfg.EmbeddingSettings(),
		LLM:       cfg.LLMSettings(),
		Vector:    cfg.VectorSettings(),
		RateLimit: ai.RateLimit{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
			MaxRetries:        cfg.RateLimit.MaxRetries,
			Backoff:           cfg.RateLimit.Backoff,
		},
		PromptStore: prompts,
	})

	linkerSettings := cfg.LinkerSettings()
	linker := services.NewLinker(strategies.Vector, store.Adjacency(linkerSettings.Adjacency), linkerSettings)

	ingestion := services.NewIngestionService(
		store,
		normalisers.NewDefaultRegistry(),
		postprocessors.DefaultPipeline(cfg.Ingest.ChunkSize, cfg.Ingest.Overlap),
		strategies.Generator,
		strategies.Embedder,
		strategies.Vector,
		linker,
		services.WithConcurrency(cfg.Ingest.Concurrency),
		services.WithFileTimeout(cfg.Ingest.FileTimeout),
	)

	return &cli.Services{
		Graph:     services.NewGraphService(store, strategies.Vector),
		Node:      services.NewNodeService(store, strategies.Embedder, strategies.Vector, linker),
		Ingestion: ingestion,
		Config:    configStore,
		MCP:       cfg.MCP,
		Capabilities: map[string]string{
			"generator": strategies.Generator.Mode(),
			"embedder":  strategies.Embedder.ModelName(),
			"vector":    strategies.VectorName,
			"storage":   cfg.Storage.Backend,
		},
		Warnings: strategies.Warnings,
		Close: func() error {
			return errors.Join(strategies.Close(), store.Close())
		},
	}, nil
}

func openStore(ctx context.Context, sc config.StorageConfig) (driven.Store, error) {
	switch sc.Backend {
	case config.BackendPostgres:
		store, err := postgres.Open(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendSQLite, "":
		store, err := sqlite.Open(ctx, sc.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}
