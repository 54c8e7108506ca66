package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FabricConfig holds settings for the Fabric REST API and the publisher.
type FabricConfig struct {
	APIURL    string `mapstructure:"api_url"`
	PortalURL string `mapstructure:"portal_url"`
	Token     string `mapstructure:"token"`
	// PublishCommand is the argv of the external publisher. Request
	// arguments are appended to it.
	PublishCommand []string `mapstructure:"publish_command"`
	PageSize       int      `mapstructure:"page_size"`
}

// TimeoutConfig bounds the blocking collaborator calls of an install.
type TimeoutConfig struct {
	Clone  time.Duration `mapstructure:"clone"`
	List   time.Duration `mapstructure:"list"`
	Deploy time.Duration `mapstructure:"deploy"`
}

// Config holds the tool configuration.
// Values are populated from .jumpstart.yaml, JUMPSTART_* env vars, and CLI flags.
type Config struct {
	RegistryDir      string        `mapstructure:"registry_dir"`
	BundlesDir       string        `mapstructure:"bundles_dir"`
	TempDir          string        `mapstructure:"temp_dir"`
	WorkspaceID      string        `mapstructure:"workspace_id"`
	DisplayAlias     string        `mapstructure:"display_alias"`
	NewThresholdDays int           `mapstructure:"new_threshold_days"`
	StrictValidation bool          `mapstructure:"strict_validation"`
	LogLevel         string        `mapstructure:"log_level"`
	Fabric           FabricConfig  `mapstructure:"fabric"`
	Timeouts         TimeoutConfig `mapstructure:"timeouts"`
}

// SetDefaults registers built-in defaults and environment binding on the
// global viper instance.
func SetDefaults() {
	viper.SetDefault("registry_dir", "registry")
	viper.SetDefault("bundles_dir", "bundles")
	viper.SetDefault("temp_dir", "")
	viper.SetDefault("workspace_id", "")
	viper.SetDefault("display_alias", "jumpstart")
	viper.SetDefault("new_threshold_days", 60)
	viper.SetDefault("strict_validation", false)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("fabric.api_url", "https://api.fabric.microsoft.com")
	viper.SetDefault("fabric.portal_url", "https://app.powerbi.com")
	viper.SetDefault("fabric.token", "")
	viper.SetDefault("fabric.publish_command", []string{"fabric-publish"})
	viper.SetDefault("fabric.page_size", 100)
	viper.SetDefault("timeouts.clone", "5m")
	viper.SetDefault("timeouts.list", "1m")
	viper.SetDefault("timeouts.deploy", "30m")

	viper.SetEnvPrefix("JUMPSTART")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings that would make every install fail.
func (c Config) Validate() error {
	if c.RegistryDir == "" {
		return fmt.Errorf("registry_dir must be set")
	}
	if c.NewThresholdDays < 0 {
		return fmt.Errorf("new_threshold_days must be non-negative, got %d", c.NewThresholdDays)
	}
	if c.Fabric.PageSize < 0 {
		return fmt.Errorf("fabric.page_size must be non-negative, got %d", c.Fabric.PageSize)
	}
	for name, d := range map[string]time.Duration{
		"timeouts.clone":  c.Timeouts.Clone,
		"timeouts.list":   c.Timeouts.List,
		"timeouts.deploy": c.Timeouts.Deploy,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d)
		}
	}
	return nil
}
