package main

import (
	"errors"
	"os"

	contentbody "github.com/alnah/go-contentbody"
	"github.com/alnah/go-contentbody/internal/assets"
	"github.com/alnah/go-contentbody/internal/config"
	"github.com/alnah/go-contentbody/internal/logging"
)

// Exit codes for the contentbody CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every file rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, contentbody.ErrBrowserConnect) ||
		errors.Is(err, contentbody.ErrPageCreate) ||
		errors.Is(err, contentbody.ErrPageLoad) ||
		errors.Is(err, contentbody.ErrMeasure) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, config.ErrAnnotationsNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrAnnotationsParse) ||
		errors.Is(err, config.ErrMissingComponent) ||
		errors.Is(err, logging.ErrUnknownLevel) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, contentbody.ErrInvalidWidth) ||
		errors.Is(err, contentbody.ErrTemplateParse) {
		return ExitUsage
	}

	return ExitGeneral
}
