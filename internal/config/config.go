package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/adrbuch/internal/home"
)

// EnvPrefix prefixes environment overrides, e.g. ADRBUCH_WORKERS or
// ADRBUCH_MERGE_MAX_GLUE_OFFSET.
const EnvPrefix = "ADRBUCH"

// Manager handles loading configuration.
type Manager struct {
	mu     sync.RWMutex
	v      *viper.Viper
	config *Config
}

// NewManager creates a new config manager and loads the config.
// cfgFile may be empty, in which case config.yaml is looked up in the
// current directory and in homeDir.
func NewManager(cfgFile, homeDir string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults, environment and config file.
func (cm *Manager) initViper(cfgFile, homeDir string) error {
	v := cm.v
	defaults, err := flatten(DefaultConfig())
	if err != nil {
		return err
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Environment variables with ADRBUCH_ prefix, nested keys joined by _
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("volumes.process", EnvPrefix+"_VOLUMES_PROCESS", "PROCESS_VOLUMES"); err != nil {
		return err
	}

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir != "" {
			v.AddConfigPath(homeDir)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// flatten turns the defaults into dotted viper keys so that every leaf can
// be overridden from the environment.
func flatten(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}

	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]any); ok {
				walk(key, sub)
				continue
			}
			out[key] = val
		}
	}
	walk("", tree)
	return out, nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the config file in use, or "" if none was found.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ResolvePaths returns the paths with environment references expanded and
// empty values filled in from the home directory layout.
func (c *Config) ResolvePaths(dir *home.Dir) PathsConfig {
	pick := func(value, fallback string) string {
		if value = ResolveEnvVars(value); value != "" {
			return value
		}
		return fallback
	}
	p := c.Paths
	return PathsConfig{
		Chapters:      pick(p.Chapters, dir.ChaptersPath()),
		Pages:         pick(p.Pages, dir.PagesPath()),
		AdPages:       pick(p.AdPages, dir.AdPagesPath()),
		Dividers:      pick(p.Dividers, dir.DividersPath()),
		AddressReform: pick(p.AddressReform, dir.AddressReformPath()),
		OCR:           pick(p.OCR, dir.OCRDir()),
		Scans:         pick(p.Scans, dir.ScansDir()),
		Proofread:     pick(p.Proofread, dir.ProofreadDir()),
		Crops:         pick(p.Crops, dir.CropsDir()),
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# adrbuch configuration
# Empty paths use the home directory layout; paths may use ${ENV_VAR} syntax.
# Every key can be overridden from the environment, e.g. ADRBUCH_WORKERS=4.
# PROCESS_VOLUMES=1880-01-01,1881-09-30 limits a run to these volumes.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
