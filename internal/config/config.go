package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docsearch/internal/domain"
)

// ModelsConfig describes the model artifacts and where to keep them.
type ModelsConfig struct {
	Dir             string `yaml:"dir"`
	RegistryURL     string `yaml:"registry_url"`
	TokenEnv        string `yaml:"token_env"`
	DownloadWorkers int    `yaml:"download_workers"`
	Embedding       string `yaml:"embedding"`
	Reranker        string `yaml:"reranker"`
}

// HTTPProviderConfig configures an HTTP model provider endpoint.
type HTTPProviderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the embedder implementation.
type EmbedderConfig struct {
	Type string              `yaml:"type"`
	HTTP *HTTPProviderConfig `yaml:"http,omitempty"`
}

// RerankerConfig selects and configures the reranker implementation.
type RerankerConfig struct {
	Type string              `yaml:"type"`
	HTTP *HTTPProviderConfig `yaml:"http,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChars   int  `yaml:"max_chars"`
	WindowSize int  `yaml:"window_size"`
	Overlap    *int `yaml:"overlap,omitempty"`
}

// SearchConfig configures the two-stage retrieval.
type SearchConfig struct {
	CoarseFloor int `yaml:"coarse_floor"`
	TopK        int `yaml:"top_k"`
}

// SummaryConfig configures the document summary shown in the UI.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Models   ModelsConfig   `yaml:"models"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Reranker RerankerConfig `yaml:"reranker"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Search   SearchConfig   `yaml:"search"`
	Summary  SummaryConfig  `yaml:"summary"`
}

// OverlapSentences returns the configured sentence overlap, defaulting to 1.
func (c ChunkerConfig) OverlapSentences() int {
	if c.Overlap == nil {
		return 1
	}
	return *c.Overlap
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docsearch/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects parameter combinations the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	if c.Chunker.MaxChars <= 0 {
		return fmt.Errorf("%w: chunker.max_chars must be positive, got %d",
			domain.ErrInvalidConfiguration, c.Chunker.MaxChars)
	}
	if c.Chunker.WindowSize <= 0 {
		return fmt.Errorf("%w: chunker.window_size must be positive, got %d",
			domain.ErrInvalidConfiguration, c.Chunker.WindowSize)
	}
	overlap := c.Chunker.OverlapSentences()
	if overlap < 0 {
		return fmt.Errorf("%w: chunker.overlap must not be negative, got %d",
			domain.ErrInvalidConfiguration, overlap)
	}
	if overlap >= c.Chunker.WindowSize {
		return fmt.Errorf("%w: chunker.overlap (%d) must be smaller than window_size (%d)",
			domain.ErrInvalidConfiguration, overlap, c.Chunker.WindowSize)
	}
	if c.Search.CoarseFloor <= 0 {
		return fmt.Errorf("%w: search.coarse_floor must be positive, got %d",
			domain.ErrInvalidConfiguration, c.Search.CoarseFloor)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsearch", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Models.Dir == "" {
		cfg.Models.Dir = "models"
	}
	if cfg.Models.RegistryURL == "" {
		cfg.Models.RegistryURL = "https://huggingface.co"
	}
	if cfg.Models.TokenEnv == "" {
		cfg.Models.TokenEnv = "HF_TOKEN"
	}
	if cfg.Models.DownloadWorkers == 0 {
		cfg.Models.DownloadWorkers = 4
	}
	if cfg.Models.Embedding == "" {
		cfg.Models.Embedding = "BAAI/bge-m3"
	}
	if cfg.Models.Reranker == "" {
		cfg.Models.Reranker = "BAAI/bge-reranker-large"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Reranker.Type == "" {
		cfg.Reranker.Type = "lexical"
	}
	if cfg.Embedder.Type == "http" && cfg.Embedder.HTTP != nil {
		applyHTTPDefaults(cfg.Embedder.HTTP)
	}
	if cfg.Reranker.Type == "http" && cfg.Reranker.HTTP != nil {
		applyHTTPDefaults(cfg.Reranker.HTTP)
	}
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = 400
	}
	if cfg.Chunker.WindowSize == 0 {
		cfg.Chunker.WindowSize = 4
	}
	if cfg.Search.CoarseFloor == 0 {
		cfg.Search.CoarseFloor = 10
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 10
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 5
	}
}

func applyHTTPDefaults(h *HTTPProviderConfig) {
	if h.BaseURL == "" {
		h.BaseURL = "http://localhost:8080"
	}
	if h.TimeoutSecs == 0 {
		h.TimeoutSecs = 30
	}
}
