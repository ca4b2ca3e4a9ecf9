package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap/zapcore"
)

var (
	// ErrInvalidHeaderMode indicates an unsupported header mode
	ErrInvalidHeaderMode = errors.New("invalid header mode")

	// ErrInvalidIncludeMode indicates an unsupported include mode
	ErrInvalidIncludeMode = errors.New("invalid include mode")

	// ErrInvalidHeaderExt indicates a header extension without a leading dot
	ErrInvalidHeaderExt = errors.New("invalid header extension")

	// ErrEmptyEntryFile indicates a missing default entry file
	ErrEmptyEntryFile = errors.New("empty default entry file")

	// ErrInvalidSkipPattern indicates a skip glob that does not compile
	ErrInvalidSkipPattern = errors.New("invalid skip pattern")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unknown log format
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateListing(&cfg.Listing); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateListing(cfg *ListingConfig) error {
	if strings.TrimSpace(cfg.DefaultEntryFile) == "" {
		return fmt.Errorf("%w: default_entry_file is required", ErrEmptyEntryFile)
	}
	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	switch cfg.Headers {
	case "prototypes", "placeholder":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'prototypes' or 'placeholder', got '%s'", ErrInvalidHeaderMode, cfg.Headers))
	}

	switch cfg.Includes {
	case "all", "referenced", "none":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'all', 'referenced' or 'none', got '%s'", ErrInvalidIncludeMode, cfg.Includes))
	}

	if len(cfg.HeaderExt) < 2 || !strings.HasPrefix(cfg.HeaderExt, ".") || strings.ContainsAny(cfg.HeaderExt, `/\`) {
		errs = append(errs, fmt.Errorf("%w: must start with '.', got '%s'", ErrInvalidHeaderExt, cfg.HeaderExt))
	}

	for _, pattern := range cfg.Skip {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: '%s': %v", ErrInvalidSkipPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	var errs []error

	if _, err := zapcore.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: '%s'", ErrInvalidLogLevel, cfg.Level))
	}

	switch cfg.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'json' or 'console', got '%s'", ErrInvalidLogFormat, cfg.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every input error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}

	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
