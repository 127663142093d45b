package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider   string                    `mapstructure:"provider" yaml:"provider"`
	ServiceURL string                    `mapstructure:"service_url" yaml:"service_url"`
	Providers  map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// ProviderConfig holds per-provider credentials as written in the config
// file. Which fields are required depends on the provider descriptor.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

const DefaultServiceURL = "https://api.textpolish.dev/v1/polish"

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(configDir, "textpolish"))
	viper.AddConfigPath(".")

	viper.SetDefault("provider", "openai")
	viper.SetDefault("service_url", DefaultServiceURL)

	// Config file is optional; defaults plus env vars can be enough.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}

	for name, pc := range cfg.Providers {
		pc.APIKey, err = ResolveValue(pc.APIKey)
		if err != nil {
			return nil, fmt.Errorf("providers.%s.api_key: %w", name, err)
		}
		pc.BaseURL, err = ResolveValue(pc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("providers.%s.base_url: %w", name, err)
		}
		cfg.Providers[name] = pc
	}

	// Fall back to environment variables for keys not set in the file.
	for _, d := range Descriptors() {
		pc := cfg.Providers[d.Name]
		if pc.APIKey == "" && d.EnvKey != "" {
			pc.APIKey = os.Getenv(d.EnvKey)
		}
		if pc.APIKey == "" {
			pc.APIKey = os.Getenv("TEXTPOLISH_API_KEY")
		}
		cfg.Providers[d.Name] = pc
	}

	return &cfg, nil
}

// ApplyOverrides applies command-line provider/model selection on top of the
// loaded config. Empty values leave the current selection untouched; a model
// override applies to whichever provider ends up selected.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.Provider = provider
	}
	if model != "" {
		if c.Providers == nil {
			c.Providers = map[string]ProviderConfig{}
		}
		pc := c.Providers[c.Provider]
		pc.Model = model
		c.Providers[c.Provider] = pc
	}
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "textpolish", "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	content := "# textpolish configuration\n# api_key values support ${VAR} and $(command) resolution\n" + string(body)

	return os.WriteFile(path, []byte(content), 0600)
}
