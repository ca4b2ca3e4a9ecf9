package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of searching.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SYMSPLIT_*)
// 2. Config file (.symsplit/config.yml or .symsplit/config.yaml, or the explicit file)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("SYMSPLIT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., SYMSPLIT_OUTPUT_HEADERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("listing.annotation_tag")
	v.BindEnv("listing.default_entry_file")
	v.BindEnv("listing.entry_point")

	v.BindEnv("output.headers")
	v.BindEnv("output.header_ext")
	v.BindEnv("output.includes")
	v.BindEnv("output.manifest")

	v.BindEnv("logging.level")
	v.BindEnv("logging.format")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("listing.annotation_tag", defaults.Listing.AnnotationTag)
	v.SetDefault("listing.default_entry_file", defaults.Listing.DefaultEntryFile)
	v.SetDefault("listing.entry_point", defaults.Listing.EntryPoint)

	v.SetDefault("output.headers", defaults.Output.Headers)
	v.SetDefault("output.header_ext", defaults.Output.HeaderExt)
	v.SetDefault("output.includes", defaults.Output.Includes)
	v.SetDefault("output.entry_includes", defaults.Output.EntryIncludes)
	v.SetDefault("output.skip", defaults.Output.Skip)
	v.SetDefault("output.manifest", defaults.Output.Manifest)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
