package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eisonai/devkit/internal/assets"
	"github.com/eisonai/devkit/internal/core/checksum"
	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/hf"
	"github.com/eisonai/devkit/internal/telegram"
)

// EnvPrefix prefixes every environment override, e.g. DEVKIT_COMPARE_ALGO
const EnvPrefix = "DEVKIT"

// DefaultConfigPaths returns the default paths to search for devkit.yaml
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	// Add user config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "devkit"))
	}

	// Add home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "devkit"))
		paths = append(paths, filepath.Join(homeDir, ".devkit"))
	}

	return paths
}

// setDefaults registers every key so environment overrides resolve on Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", false)

	v.SetDefault("compare.algo", string(checksum.DefaultAlgorithm))
	v.SetDefault("compare.chunk_size", checksum.DefaultChunkSize)
	v.SetDefault("compare.ignore", []string{})
	v.SetDefault("compare.top_k", 1)
	v.SetDefault("compare.all_pairs", false)
	v.SetDefault("compare.json", "")
	v.SetDefault("compare.io_limit", 0)

	src := assets.DefaultSource()
	v.SetDefault("assets.dest", assets.DefaultDest)
	v.SetDefault("assets.force", false)
	v.SetDefault("assets.model_id", src.ModelID)
	v.SetDefault("assets.repo", "")
	v.SetDefault("assets.webllm_version", src.WebLLMVersion)
	v.SetDefault("assets.wasm_file", src.WasmFile)
	v.SetDefault("assets.wasm_base_url", src.WasmBaseURL)
	v.SetDefault("assets.hf_base_url", hf.DefaultBaseURL)
	v.SetDefault("assets.user_agent", hf.DefaultUserAgent)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.token_file", "telegram/.token")
	v.SetDefault("telegram.chat_id", "@RonnieAppsChannel")
	v.SetDefault("telegram.image", "telegram/VersionUpdate.png")
	v.SetDefault("telegram.top", "telegram/top.md")
	v.SetDefault("telegram.changelog", "telegram/changelog.md")
	v.SetDefault("telegram.parse_mode", telegram.ParseModeMarkdown)
	v.SetDefault("telegram.no_parse_mode", false)
	v.SetDefault("telegram.normalize", true)
	v.SetDefault("telegram.dry_run", false)
	v.SetDefault("telegram.base_url", telegram.DefaultBaseURL)
	v.SetDefault("telegram.messages_per_second", 1.0)

	v.SetDefault("metrics.file", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds the configuration with precedence flag > env > file > default.
//
// If path is empty the default locations are searched for devkit.yaml and a
// missing file is not an error. bindings maps flag names of flags to config
// keys; only flags the user actually set override lower layers.
func Load(path string, flags *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	v := newViper()

	if path != "" {
		// Use specific file
		v.SetConfigFile(ExpandPath(path))
	} else {
		// Search default paths
		v.SetConfigName("devkit")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// optional when searching
		case path != "" && errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	if err := bindFlags(v, flags, bindings); err != nil {
		return nil, err
	}

	return decode(v)
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return decode(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	if flags == nil {
		return nil
	}
	for name, key := range bindings {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("%w: binding flag --%s: %v", domain.ErrConfigInvalid, name, err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
