// Command docsight ingests PDF documents and answers questions about
// them from the most relevant page images.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/answer"
	answeropenai "github.com/docsight-labs/docsight-cli/internal/adapters/driven/answer/openai"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/answer/stub"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/config/file"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/embedding/clipd"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/index/flat"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/raster/poppler"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/storage/files"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docsight-labs/docsight-cli/internal/adapters/driving/cli"
	"github.com/docsight-labs/docsight-cli/internal/core/domain"
	"github.com/docsight-labs/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-labs/docsight-cli/internal/core/services"
	"github.com/docsight-labs/docsight-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := os.Getenv("DOCSIGHT_CONFIG_DIR")
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	cfg, err := file.Load(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	docs, err := files.NewDocStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}

	embedder := clipd.NewEmbeddingService(clipd.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		RPS:        cfg.Embedding.RPS,
	})
	defer embedder.Close()

	index := flat.New(cfg.DataDir, embedder.Dimensions())
	if err := index.Restore(); err != nil {
		if !errors.Is(err, domain.ErrIndexCorrupt) {
			return fmt.Errorf("restoring index: %w", err)
		}
		// Fail closed: serve an empty index rather than bad evidence.
		logger.Warn("Index state is corrupt, starting empty. Run 'docsight index rebuild' to recover.")
	}

	answerer, err := buildAnswerer(cfg)
	if err != nil {
		return err
	}
	defer answerer.Close()

	pipeline, err := services.NewPipelineFacade(
		store.ManifestStore(),
		docs,
		index,
		poppler.New(""),
		embedder,
		answerer,
		domain.Limits{
			MaxPages:     cfg.Limits.MaxPages,
			MaxFileBytes: int64(cfg.Limits.MaxFileBytes),
			DPI:          cfg.Limits.DPI,
		},
		flat.Backend,
		flat.IndexType,
	)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, cli.Deps{
		Pipeline:  pipeline,
		Config:    cfg,
		ConfigDir: configDir,
	})
}

// buildAnswerer selects the answer backend. Anything but the stub is
// wrapped with the stub as backstop so queries degrade instead of failing.
func buildAnswerer(cfg *file.Config) (driven.AnswerService, error) {
	backstop := stub.NewAnswerService()

	switch cfg.Answer.Provider {
	case "", stub.Name:
		return backstop, nil
	case "openai":
		primary, err := answeropenai.NewAnswerService(answeropenai.Config{
			APIKey:  cfg.Answer.APIKey,
			BaseURL: cfg.Answer.BaseURL,
			Model:   cfg.Answer.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring answer provider: %w", err)
		}
		return answer.NewFallback(primary, backstop), nil
	default:
		return nil, fmt.Errorf("unknown answer provider %q", cfg.Answer.Provider)
	}
}
