package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-contentbody/internal/fileutil"
	"github.com/alnah/go-contentbody/internal/hints"
	"github.com/alnah/go-contentbody/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory under the user config dir searched by LoadConfig.
const appDir = "go-contentbody"

// Field limits.
const (
	MaxDescriptionLength = 200  // Log label for the content
	MaxPathLength        = 4096 // PATH_MAX on Linux
	MaxSchemeLength      = 32   // "https", "mailto"
	MaxSchemes           = 16
	MaxWidth             = 10000 // CSS pixels
	MaxWorkers           = 8     // One browser per worker
)

// Logging levels.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// Config holds all configuration for rendering content.
type Config struct {
	Content ContentConfig `yaml:"content"`
	Links   LinksConfig   `yaml:"links"`
	Measure MeasureConfig `yaml:"measure"`
	Output  OutputConfig  `yaml:"output"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// ContentConfig defines how content is decorated.
type ContentConfig struct {
	Description       string `yaml:"description"`       // Names the content in logs (empty = file name)
	Nofollow          bool   `yaml:"nofollow"`          // Add rel="nofollow" to every link
	CollapseFootnotes bool   `yaml:"collapseFootnotes"` // default: true
	Annotations       string `yaml:"annotations"`       // Annotation file (empty = none)
}

// LinksConfig defines link handling.
type LinksConfig struct {
	NoPrefetch     bool     `yaml:"noPrefetch"`
	AllowedSchemes []string `yaml:"allowedSchemes"` // CTA targets (default: http, https, mailto)
}

// MeasureConfig defines the layout measurement surface.
type MeasureConfig struct {
	Enabled bool `yaml:"enabled"` // default: true
	Width   int  `yaml:"width"`   // CSS pixels (default: 720, 0 = default)
	Workers int  `yaml:"workers"` // 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
	Manifest   bool   `yaml:"manifest"`   // Also write <name>.slots.yaml
	MarkupOnly bool   `yaml:"markupOnly"` // Write placeholders instead of projected components
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// LoggingConfig defines log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"` // "none", "normal", "debug" (default: "normal")
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("content.description", c.Content.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if err := validateFieldLength("content.annotations", c.Content.Annotations, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if len(c.Links.AllowedSchemes) > MaxSchemes {
		return fmt.Errorf("%w: links.allowedSchemes: %d entries (max %d)", ErrInvalidValue, len(c.Links.AllowedSchemes), MaxSchemes)
	}
	for i, scheme := range c.Links.AllowedSchemes {
		field := fmt.Sprintf("links.allowedSchemes[%d]", i)
		if err := validateFieldLength(field, scheme, MaxSchemeLength); err != nil {
			return err
		}
		if strings.TrimSpace(scheme) == "" || strings.ContainsAny(scheme, ":/") {
			return fmt.Errorf("%w: %s: %q is not a URL scheme", ErrInvalidValue, field, scheme)
		}
	}

	if c.Measure.Width < 0 || c.Measure.Width > MaxWidth {
		return fmt.Errorf("%w: measure.width: %d (must be between 0 and %d)", ErrInvalidValue, c.Measure.Width, MaxWidth)
	}
	if c.Measure.Workers < 0 || c.Measure.Workers > MaxWorkers {
		return fmt.Errorf("%w: measure.workers: %d (must be between 0 and %d)", ErrInvalidValue, c.Measure.Workers, MaxWorkers)
	}

	if c.Logging.Level != "" {
		switch strings.ToLower(c.Logging.Level) {
		case LevelNone, LevelNormal, LevelDebug:
			// valid
		default:
			return fmt.Errorf("%w: logging.level: %q (must be none, normal, or debug)", ErrInvalidValue, c.Logging.Level)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// footnotes collapsed, measurement on at 720px, normal logging.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{CollapseFootnotes: true},
		Links:   LinksConfig{AllowedSchemes: []string{"http", "https", "mailto"}},
		Measure: MeasureConfig{Enabled: true, Width: 720},
		Logging: LoggingConfig{Level: LevelNormal},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.ReadStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-contentbody/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s%s", ErrConfigNotFound, strings.Join(triedPaths, ", "), hints.ForConfigNotFound(triedPaths, appDir))
}
