package engine

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"docsearch/internal/artifact"
	"docsearch/internal/chunker"
	"docsearch/internal/config"
	"docsearch/internal/docio"
	"docsearch/internal/domain"
	"docsearch/internal/embedding"
	"docsearch/internal/index"
	"docsearch/internal/registry"
	"docsearch/internal/rerank"
)

// Build assembles an engine from configuration. HTTP model providers get
// their artifacts provisioned first and are probed with a warmup call; a
// provider that cannot serve makes the build fail with ErrModelLoadFailed.
func Build(ctx context.Context, cfg *config.AppConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extractor, err := chunker.NewExtractor(cfg.Chunker.MaxChars, cfg.Chunker.WindowSize, cfg.Chunker.OverlapSentences())
	if err != nil {
		return nil, err
	}

	var store *artifact.Store
	ensureArtifact := func(artifactID string) error {
		if store == nil {
			reg := registry.NewClient(registry.Config{
				BaseURL:  cfg.Models.RegistryURL,
				TokenEnv: cfg.Models.TokenEnv,
			})
			store = artifact.NewStore(reg, cfg.Models.DownloadWorkers)
		}
		dir := filepath.Join(cfg.Models.Dir, path.Base(artifactID))
		return store.Ensure(ctx, artifactID, dir)
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = embedding.NewTFIDF()
	case "http":
		if err := ensureArtifact(cfg.Models.Embedding); err != nil {
			return nil, err
		}
		httpCfg := cfg.Embedder.HTTP
		if httpCfg == nil {
			httpCfg = &config.HTTPProviderConfig{}
		}
		client := embedding.NewHTTPClient(embedding.HTTPConfig{
			BaseURL:   httpCfg.BaseURL,
			APIKeyEnv: httpCfg.APIKeyEnv,
			Model:     httpCfg.Model,
			Timeout:   time.Duration(httpCfg.TimeoutSecs) * time.Second,
		})
		if _, err := client.Encode(ctx, []string{"warmup"}); err != nil {
			return nil, fmt.Errorf("%w: embedding provider: %v", domain.ErrModelLoadFailed, err)
		}
		emb = client
	default:
		return nil, fmt.Errorf("%w: unknown embedder type %q", domain.ErrInvalidConfiguration, cfg.Embedder.Type)
	}

	var reranker domain.Reranker
	switch cfg.Reranker.Type {
	case "lexical", "":
		reranker = rerank.NewLexical()
	case "http":
		if err := ensureArtifact(cfg.Models.Reranker); err != nil {
			return nil, err
		}
		httpCfg := cfg.Reranker.HTTP
		if httpCfg == nil {
			httpCfg = &config.HTTPProviderConfig{}
		}
		client := rerank.NewHTTPClient(rerank.HTTPConfig{
			BaseURL:   httpCfg.BaseURL,
			APIKeyEnv: httpCfg.APIKeyEnv,
			Model:     httpCfg.Model,
			Timeout:   time.Duration(httpCfg.TimeoutSecs) * time.Second,
		})
		if _, err := client.Score(ctx, "warmup", []string{"warmup"}); err != nil {
			return nil, fmt.Errorf("%w: rerank provider: %v", domain.ErrModelLoadFailed, err)
		}
		reranker = client
	default:
		return nil, fmt.Errorf("%w: unknown reranker type %q", domain.ErrInvalidConfiguration, cfg.Reranker.Type)
	}

	return New(docio.NewReader(), extractor, index.New(emb), reranker, cfg.Search.CoarseFloor), nil
}
