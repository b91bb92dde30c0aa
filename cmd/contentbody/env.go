package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-contentbody/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // CONTENTBODY_CONFIG: config file name or path
	OutputDir  string // CONTENTBODY_OUTPUT_DIR: default output directory
	AssetPath  string // CONTENTBODY_ASSET_PATH: custom styles/components
	Workers    int    // CONTENTBODY_WORKERS: parallel workers
	Width      int    // CONTENTBODY_WIDTH: content column width
}

// knownEnvVars lists valid CONTENTBODY_* environment variables.
var knownEnvVars = map[string]bool{
	"CONTENTBODY_CONFIG":     true,
	"CONTENTBODY_OUTPUT_DIR": true,
	"CONTENTBODY_ASSET_PATH": true,
	"CONTENTBODY_WORKERS":    true,
	"CONTENTBODY_WIDTH":      true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid numbers are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("CONTENTBODY_CONFIG"),
		OutputDir:  os.Getenv("CONTENTBODY_OUTPUT_DIR"),
		AssetPath:  os.Getenv("CONTENTBODY_ASSET_PATH"),
	}
	if w, err := strconv.Atoi(os.Getenv("CONTENTBODY_WORKERS")); err == nil && w > 0 {
		cfg.Workers = w
	}
	if w, err := strconv.Atoi(os.Getenv("CONTENTBODY_WIDTH")); err == nil && w > 0 {
		cfg.Width = w
	}
	return cfg
}

// warnUnknownEnvVars warns about unrecognized CONTENTBODY_* variables.
// Helps catch typos like CONTENTBODY_WORKER.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "CONTENTBODY_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment values over the config file.
// CLI flags are merged afterwards, so the order is:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Workers > 0 {
		cfg.Measure.Workers = env.Workers
	}
	if env.Width > 0 {
		cfg.Measure.Width = env.Width
	}
}
