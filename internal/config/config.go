package config

import (
	"github.com/mvp-joe/symsplit/internal/assembler"
	"github.com/mvp-joe/symsplit/internal/listing"
)

// DirName is the per-project configuration directory.
const DirName = ".symsplit"

// Config represents the complete symsplit configuration.
// It can be loaded from .symsplit/config.yml with environment variable overrides.
type Config struct {
	Listing ListingConfig `yaml:"listing" mapstructure:"listing"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ListingConfig controls how listings are read.
type ListingConfig struct {
	AnnotationTag    string `yaml:"annotation_tag" mapstructure:"annotation_tag"`         // empty accepts any tag
	DefaultEntryFile string `yaml:"default_entry_file" mapstructure:"default_entry_file"` // used when the entry function is unattributed
	EntryPoint       string `yaml:"entry_point" mapstructure:"entry_point"`               // used when the CLI omits one
}

// OutputConfig controls the generated files.
type OutputConfig struct {
	Headers       string   `yaml:"headers" mapstructure:"headers"`   // "prototypes" or "placeholder"
	HeaderExt     string   `yaml:"header_ext" mapstructure:"header_ext"`
	Includes      string   `yaml:"includes" mapstructure:"includes"` // "all", "referenced" or "none"
	EntryIncludes []string `yaml:"entry_includes" mapstructure:"entry_includes"`
	Skip          []string `yaml:"skip" mapstructure:"skip"` // glob patterns over normalised output paths
	Manifest      bool     `yaml:"manifest" mapstructure:"manifest"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	out := assembler.DefaultOptions()
	return &Config{
		Listing: ListingConfig{
			AnnotationTag:    "",
			DefaultEntryFile: listing.DefaultEntryFile,
			EntryPoint:       "main",
		},
		Output: OutputConfig{
			Headers:       string(out.Headers),
			HeaderExt:     out.HeaderExt,
			Includes:      string(out.Includes),
			EntryIncludes: out.EntryIncludes,
			Skip:          []string{},
			Manifest:      out.Manifest,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// AssemblerOptions converts the output section into assembler options.
func (c *Config) AssemblerOptions() assembler.Options {
	return assembler.Options{
		Headers:       assembler.HeaderMode(c.Output.Headers),
		HeaderExt:     c.Output.HeaderExt,
		Includes:      assembler.IncludeMode(c.Output.Includes),
		EntryIncludes: c.Output.EntryIncludes,
		Skip:          c.Output.Skip,
		Manifest:      c.Output.Manifest,
	}
}

// ConverterOptions converts the listing section into converter options.
func (c *Config) ConverterOptions() []listing.Option {
	return []listing.Option{
		listing.WithGrammar(listing.NewGrammar(c.Listing.AnnotationTag)),
		listing.WithDefaultEntryFile(c.Listing.DefaultEntryFile),
	}
}
