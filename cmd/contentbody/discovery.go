package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	contentbody "github.com/alnah/go-contentbody"
	"github.com/alnah/go-contentbody/internal/fileutil"
)

// Output file suffixes.
const (
	renderedSuffix = ".rendered.html"
	manifestSuffix = ".slots.yaml"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .html, .htm, .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToRender represents a single file to process.
type FileToRender struct {
	InputPath  string
	OutputPath string
	Kind       fileutil.SourceKind
}

// ManifestPath returns the slot manifest path written beside the output.
func (f FileToRender) ManifestPath() string {
	return strings.TrimSuffix(f.OutputPath, renderedSuffix) + manifestSuffix
}

// discoverFiles finds all content files to render. Files this command
// wrote are skipped, so rendering a directory twice gives the same result.
func discoverFiles(inputPath, outputDir string) ([]FileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		kind := fileutil.KindOf(inputPath)
		if kind == fileutil.SourceUnknown {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToRender{{InputPath: inputPath, OutputPath: outPath, Kind: kind}}, nil
	}

	var files []FileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || strings.HasSuffix(path, renderedSuffix) {
			return nil
		}
		kind := fileutil.KindOf(path)
		if kind == fileutil.SourceUnknown {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToRender{InputPath: path, OutputPath: outPath, Kind: kind})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the rendered page path for a content file,
// keeping the layout of a walked directory under outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return fileutil.SwapExtension(inputPath, "", renderedSuffix)
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return fileutil.SwapExtension(inputPath, filepath.Join(outputDir, filepath.Dir(relPath)), renderedSuffix)
		}
	}

	return fileutil.SwapExtension(inputPath, outputDir, renderedSuffix)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > contentbody.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, contentbody.MaxPoolSize)
	}
	return nil
}
