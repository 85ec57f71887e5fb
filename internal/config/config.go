package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/logger"
)

// Config represents the complete configuration for devkit
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Compare  CompareConfig  `mapstructure:"compare"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// File enables rotated file output when set
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// CompareConfig holds the directory comparison settings
type CompareConfig struct {
	Algo      string   `mapstructure:"algo"`
	ChunkSize int      `mapstructure:"chunk_size"`
	Ignore    []string `mapstructure:"ignore"`
	TopK      int      `mapstructure:"top_k"`
	AllPairs  bool     `mapstructure:"all_pairs"`
	JSON      string   `mapstructure:"json"`

	// IOLimit caps hashing reads in bytes per second; 0 is unlimited
	IOLimit int64 `mapstructure:"io_limit"`
}

// AssetsConfig holds the WebLLM asset download settings
type AssetsConfig struct {
	Dest          string `mapstructure:"dest"`
	Force         bool   `mapstructure:"force"`
	ModelID       string `mapstructure:"model_id"`
	Repo          string `mapstructure:"repo"`
	WebLLMVersion string `mapstructure:"webllm_version"`
	WasmFile      string `mapstructure:"wasm_file"`
	WasmBaseURL   string `mapstructure:"wasm_base_url"`
	HFBaseURL     string `mapstructure:"hf_base_url"`
	UserAgent     string `mapstructure:"user_agent"`
}

// TelegramConfig holds the channel post settings
type TelegramConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
	ChatID    string `mapstructure:"chat_id"`
	Image     string `mapstructure:"image"`
	Top       string `mapstructure:"top"`
	Changelog string `mapstructure:"changelog"`
	ParseMode string `mapstructure:"parse_mode"`

	// NoParseMode sends plain text after normalization
	NoParseMode bool `mapstructure:"no_parse_mode"`
	Normalize   bool `mapstructure:"normalize"`
	DryRun      bool `mapstructure:"dry_run"`

	BaseURL           string  `mapstructure:"base_url"`
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if !isOneOf(c.Log.Level, "debug", "info", "warn", "warning", "error") {
		return fmt.Errorf("%w: unknown log level: %s", domain.ErrConfigInvalid, c.Log.Level)
	}
	if !isOneOf(c.Log.Format, "text", "json") {
		return fmt.Errorf("%w: unknown log format: %s", domain.ErrConfigInvalid, c.Log.Format)
	}

	if !checksum.IsSupported(checksum.Algorithm(c.Compare.Algo)) {
		return fmt.Errorf("%w: %w: %s", domain.ErrConfigInvalid, domain.ErrUnsupportedAlgorithm, c.Compare.Algo)
	}
	if c.Compare.ChunkSize <= 0 {
		return fmt.Errorf("%w: %w: %d", domain.ErrConfigInvalid, domain.ErrInvalidChunkSize, c.Compare.ChunkSize)
	}
	if c.Compare.IOLimit < 0 {
		return fmt.Errorf("%w: io_limit cannot be negative", domain.ErrConfigInvalid)
	}

	if c.Assets.Dest == "" {
		return fmt.Errorf("%w: assets dest cannot be empty", domain.ErrConfigInvalid)
	}
	if c.Assets.ModelID == "" {
		return fmt.Errorf("%w: assets model_id cannot be empty", domain.ErrConfigInvalid)
	}

	if c.Telegram.MessagesPerSecond < 0 {
		return fmt.Errorf("%w: messages_per_second cannot be negative", domain.ErrConfigInvalid)
	}

	return nil
}

// LoggerConfig converts the log section to a logger configuration.
// Log lines go to stderr so reports on stdout stay clean.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.Config{
		Level:   logger.ParseLevel(c.Log.Level),
		Format:  logger.ParseFormat(c.Log.Format),
		Outputs: []logger.OutputConfig{{Type: logger.OutputStderr}},
	}
	if c.Log.File != "" {
		cfg.Outputs = append(cfg.Outputs, logger.OutputConfig{Type: logger.OutputFile})
		cfg.File = logger.FileConfig{
			Enabled:    true,
			Path:       ExpandPath(c.Log.File),
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxAgeDays: c.Log.MaxAgeDays,
			MaxBackups: c.Log.MaxBackups,
			Compress:   c.Log.Compress,
		}
	}
	return cfg
}

func isOneOf(value string, allowed ...string) bool {
	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	// Expand ~ to home directory
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	// Expand environment variables
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
