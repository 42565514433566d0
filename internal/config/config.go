package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	DBPath     string           `json:"db_path"`
	Port       int              `json:"port"`
	LogConfig  logger.LogConfig `json:"log_config"`
	ModelCache ModelCacheConfig `json:"model_cache"`
	Embedding  ProviderConfig   `json:"embedding"`
	Generator  ProviderConfig   `json:"generator"`
	EmbedCache EmbedCacheConfig `json:"embed_cache"`
	Workspace  WorkspaceConfig  `json:"workspace"`
	CORSAllow  []string         `json:"cors_allow"`
	RateLimit  int              `json:"rate_limit_seconds"`
}

type ModelCacheConfig struct {
	TransformersCacheDir     string `json:"transformers_cache_dir"`
	SentenceTransformersHome string `json:"sentence_transformers_home"`
	ModelName                string `json:"model_name"`
	Endpoint                 string `json:"endpoint"`
	DownloadAttempts         int    `json:"download_attempts"`
}

type ProviderConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	Timeout       int         `json:"timeout"`
	MaxInputChars int         `json:"max_input_chars"`
	Data          interface{} `json:"data"`
}

type EmbedCacheConfig struct {
	LRUSize       int    `json:"lru_size"`
	LRUTTLMinutes int    `json:"lru_ttl_minutes"`
	MaxAgeDays    int    `json:"max_age_days"`
	CleanupCron   string `json:"cleanup_cron"`
	VerifyCron    string `json:"verify_cron"`
}

type WorkspaceConfig struct {
	KnowledgePDFDir string `json:"knowledge_pdf_dir"`
	VectorDBDir     string `json:"vector_db_dir"`
	LogsDir         string `json:"logs_dir"`
}

// Load reads the config file when path is non-empty, then applies defaults.
// An empty path yields a pure-default config so a fresh checkout can run
// download-models without writing a config file first.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DBPath == "" {
		cfg.DBPath = "agent_storage.db"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ModelCache.TransformersCacheDir == "" {
		cfg.ModelCache.TransformersCacheDir = "./models/transformers"
	}
	if cfg.ModelCache.SentenceTransformersHome == "" {
		cfg.ModelCache.SentenceTransformersHome = "./models/sentence_transformers"
	}
	if cfg.ModelCache.ModelName == "" {
		cfg.ModelCache.ModelName = "all-MiniLM-L6-v2"
	}
	if cfg.ModelCache.DownloadAttempts == 0 {
		cfg.ModelCache.DownloadAttempts = 3
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "local"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = cfg.ModelCache.ModelName
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30
	}
	if cfg.Embedding.MaxInputChars == 0 {
		cfg.Embedding.MaxInputChars = 20000
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 60
	}
	if cfg.Generator.MaxInputChars == 0 {
		cfg.Generator.MaxInputChars = 50000
	}
	if cfg.EmbedCache.LRUSize == 0 {
		cfg.EmbedCache.LRUSize = 4096
	}
	if cfg.EmbedCache.LRUTTLMinutes == 0 {
		cfg.EmbedCache.LRUTTLMinutes = 120
	}
	if cfg.EmbedCache.MaxAgeDays == 0 {
		cfg.EmbedCache.MaxAgeDays = 30
	}
	if cfg.EmbedCache.CleanupCron == "" {
		cfg.EmbedCache.CleanupCron = "0 4 * * *"
	}
	if cfg.EmbedCache.VerifyCron == "" {
		cfg.EmbedCache.VerifyCron = "30 4 * * *"
	}
	if cfg.Workspace.KnowledgePDFDir == "" {
		cfg.Workspace.KnowledgePDFDir = "knowledge_base/pdfs"
	}
	if cfg.Workspace.VectorDBDir == "" {
		cfg.Workspace.VectorDBDir = "vector_db"
	}
	if cfg.Workspace.LogsDir == "" {
		cfg.Workspace.LogsDir = "logs"
	}
}

func validate(cfg *Config) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Port)
	}
	switch cfg.Embedding.Provider {
	case "local", "gemini", "openai":
	default:
		return fmt.Errorf("embedding.provider must be local, gemini or openai")
	}
	if cfg.Generator.Provider != "" {
		switch cfg.Generator.Provider {
		case "gemini", "openai":
		default:
			return fmt.Errorf("generator.provider must be gemini or openai")
		}
		if cfg.Generator.Model == "" {
			return fmt.Errorf("generator.model is required when generator.provider is set")
		}
	}
	return nil
}
