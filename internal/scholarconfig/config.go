// Package scholarconfig loads and hot-reloads CLI/library configuration,
// modeled on the viper+fsnotify setup ambient tooling typically uses: a
// few defaults, an optional YAML file, environment overrides, and a
// change-notification hook.
package scholarconfig

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the resolved set of configuration knobs. The convert command
// and pipeline.Run do not read it; they take their settings from flags
// and pipeline.Config.
type Config struct {
	DictionaryPath string   `mapstructure:"dictionary_path"`
	OutputFormat   string   `mapstructure:"output_format"`
	PageMarkers    string   `mapstructure:"page_markers"`
	Debug          bool     `mapstructure:"debug"`
	Suffixes       []string `mapstructure:"suffixes"`
	Prefixes       []string `mapstructure:"prefixes"`
}

// DefaultConfig returns the configuration used when no file or
// environment override is present.
func DefaultConfig() Config {
	return Config{
		DictionaryPath: "",
		OutputFormat:   "markdown",
		PageMarkers:    "comment",
		Debug:          false,
		Suffixes:       []string{"s", "es", "ed", "ing"},
		Prefixes:       []string{"un", "re", "pre", "in"},
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config from
// cfgFile (or the default search path, when empty).
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{callbacks: make([]func(*Config), 0)}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("dictionary_path", defaults.DictionaryPath)
	viper.SetDefault("output_format", defaults.OutputFormat)
	viper.SetDefault("page_markers", defaults.PageMarkers)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("suffixes", defaults.Suffixes)
	viper.SetDefault("prefixes", defaults.Prefixes)

	viper.SetEnvPrefix("SCHOLARDOC")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholardoc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.scholardoc")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback invoked after a successful config reload.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of the configuration file.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}
		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}
