package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	contentbody "github.com/alnah/go-contentbody"
	"github.com/alnah/go-contentbody/internal/assets"
	"github.com/alnah/go-contentbody/internal/config"
	"github.com/alnah/go-contentbody/internal/dom"
	"github.com/alnah/go-contentbody/internal/fileutil"
	"github.com/alnah/go-contentbody/internal/hints"
	"github.com/alnah/go-contentbody/internal/logging"
	"github.com/alnah/go-contentbody/internal/markdown"
	"github.com/alnah/go-contentbody/internal/yamlutil"
)

// Sentinel errors for render operations.
var (
	ErrNoInput       = errors.New("no input specified")
	ErrReadInput     = errors.New("failed to read input file")
	ErrWriteOutput   = errors.New("failed to write output file")
	ErrRewriteFailed = errors.New("content rewrite failed")
	ErrRenderFailed  = errors.New("rendering failed")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// pageTemplate wraps rendered content in a standalone HTML5 document styled
// like the content column.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
<div id="contentbody-root">
%s
</div>
</body>
</html>
`

// Pool lends measurers to render workers.
type Pool interface {
	Acquire() (contentbody.Measurer, error)
	Release(contentbody.Measurer)
	Size() int
}

// Compile-time interface implementation checks.
var (
	_ Pool = (*contentbody.MeasurerPool)(nil)
	_ Pool = nopPool{}
)

// nopPool hands out no measurer, for rendering without a browser.
type nopPool struct{ size int }

func (nopPool) Acquire() (contentbody.Measurer, error) { return nil, nil }
func (nopPool) Release(contentbody.Measurer)           {}
func (p nopPool) Size() int                            { return p.size }

// RenderResult holds the outcome of a single file.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Slots      int
	Failures   int // rewrite steps that failed but left the content usable
	Err        error
	Duration   time.Duration
}

// renderParams groups parameters shared across a batch.
type renderParams struct {
	cfg         *config.Config
	annotations *config.Annotations
	projector   *contentbody.Projector // nil with --markup-only
	markdown    *markdown.Converter
	css         string
	logger      *zap.Logger
	strict      bool
}

// runRender orchestrates the render command.
func runRender(ctx context.Context, positionalArgs []string, flags *renderFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	// Load configuration
	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		var err error
		if cfg, err = config.LoadConfig(configName); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// CLI flags > env vars > config file > defaults
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var annotations *config.Annotations
	if cfg.Content.Annotations != "" {
		if annotations, err = config.LoadAnnotations(cfg.Content.Annotations); err != nil {
			return err
		}
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	files, err := discoverFiles(positionalArgs[0], cfg.Output.DefaultDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no content files found in %s", positionalArgs[0])
	}

	params, err := newRenderParams(cfg, annotations, logger, flags)
	if err != nil {
		return err
	}

	poolSize := contentbody.ResolvePoolSize(cfg.Measure.Workers)
	logger.Debug("rendering", zap.Int("files", len(files)), zap.Int("workers", poolSize), zap.Bool("measure", cfg.Measure.Enabled))

	var pool Pool = nopPool{size: poolSize}
	if cfg.Measure.Enabled {
		width := cfg.Measure.Width
		if width == 0 {
			width = contentbody.DefaultWidth
		}
		measurers := contentbody.NewMeasurerPool(poolSize, width)
		defer func() {
			if err := measurers.Close(); err != nil {
				logger.Warn("closing browsers failed", zap.Error(err))
			}
		}()
		pool = measurers
	}

	results := renderBatch(ctx, pool, files, params)

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.InputPath, r.Err))
		}
	}
	printResults(results, flags.common.quiet, flags.common.verbose, env)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %d of %d file(s): %w", ErrRenderFailed, len(errs), len(results), multierr.Combine(errs...))
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.workers > 0 {
		cfg.Measure.Workers = flags.workers
	}
	if flags.assetPath != "" {
		cfg.Assets.BasePath = flags.assetPath
	}

	if flags.content.annotations != "" {
		cfg.Content.Annotations = flags.content.annotations
	}
	if flags.content.description != "" {
		cfg.Content.Description = flags.content.description
	}
	if flags.content.nofollow {
		cfg.Content.Nofollow = true
	}
	if flags.content.noPrefetch {
		cfg.Links.NoPrefetch = true
	}
	if flags.content.noCollapseFootnotes {
		cfg.Content.CollapseFootnotes = false
	}

	if flags.measure.width > 0 {
		cfg.Measure.Width = flags.measure.width
	}
	if flags.measure.noMeasure {
		cfg.Measure.Enabled = false
	}

	if flags.mode.manifest {
		cfg.Output.Manifest = true
	}
	if flags.mode.markupOnly {
		cfg.Output.MarkupOnly = true
	}

	switch {
	case flags.common.verbose:
		cfg.Logging.Level = config.LevelDebug
	case flags.common.quiet && cfg.Logging.Level != config.LevelNone:
		cfg.Logging.Level = config.LevelNormal
	}
}

func newRenderParams(cfg *config.Config, annotations *config.Annotations, logger *zap.Logger, flags *renderFlags) (*renderParams, error) {
	resolver, err := assets.NewResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	css, err := resolver.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, err
	}

	var projector *contentbody.Projector
	if !cfg.Output.MarkupOnly {
		if projector, err = contentbody.NewProjector(cfg.Assets.BasePath); err != nil {
			return nil, err
		}
	}

	var mdOpts []markdown.Option
	if flags.content.rawHTML {
		mdOpts = append(mdOpts, markdown.WithRawHTML())
	}

	return &renderParams{
		cfg:         cfg,
		annotations: annotations,
		projector:   projector,
		markdown:    markdown.NewConverter(mdOpts...),
		css:         css,
		logger:      logger,
		strict:      flags.mode.strict,
	}, nil
}

// renderBatch processes files concurrently, one measurer per worker.
func renderBatch(ctx context.Context, pool Pool, files []FileToRender, params *renderParams) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]RenderResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			m, err := pool.Acquire()
			if err != nil {
				// Measurer creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(m)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, m, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile processes a single file and returns the result.
func renderFile(ctx context.Context, m contentbody.Measurer, f FileToRender, params *renderParams) RenderResult {
	start := time.Now()
	result := RenderResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) RenderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	markup := string(content)
	if f.Kind == fileutil.SourceMarkdown {
		if markup, err = params.markdown.ToHTML(ctx, markup); err != nil {
			return fail(err)
		}
	}

	body := contentbody.New(bodyOptions(params, m)...)
	body.Update(ctx, buildInput(markup, f.InputPath, params))
	rendered := body.Rendered()
	result.Slots = len(rendered.Slots)

	if rewriteErr := body.Err(); rewriteErr != nil {
		result.Failures = len(multierr.Errors(rewriteErr))
		if params.strict {
			return fail(fmt.Errorf("%w: %w", ErrRewriteFailed, rewriteErr))
		}
	}

	out := rendered.Markup
	if params.projector != nil {
		if out, err = params.projector.Project(rendered); err != nil {
			return fail(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}
	page := fmt.Sprintf(pageTemplate, html.EscapeString(filepath.Base(f.InputPath)), params.css, out)
	// #nosec G306 -- rendered pages are meant to be readable
	if err := os.WriteFile(f.OutputPath, []byte(page), filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	if params.cfg.Output.Manifest {
		if err := writeManifest(f, rendered); err != nil {
			return fail(err)
		}
	}

	result.Duration = time.Since(start)
	return result
}

func bodyOptions(params *renderParams, m contentbody.Measurer) []contentbody.Option {
	cfg := params.cfg
	opts := []contentbody.Option{
		contentbody.WithLogger(params.logger),
		contentbody.WithCollapsedFootnotes(cfg.Content.CollapseFootnotes),
		contentbody.WithURLValidator(contentbody.AllowSchemes(cfg.Links.AllowedSchemes...)),
	}
	if m != nil {
		opts = append(opts, contentbody.WithMeasurer(m))
	}
	return opts
}

func buildInput(markup, path string, params *renderParams) contentbody.Input {
	cfg := params.cfg
	in := contentbody.Input{
		HTML:                   markup,
		Description:            cfg.Content.Description,
		Nofollow:               cfg.Content.Nofollow,
		NoHoverPreviewPrefetch: cfg.Links.NoPrefetch,
	}
	if in.Description == "" {
		in.Description = path
	}

	if a := params.annotations; a != nil {
		in.ReplacedSubstrings = toSpecs(a.ReplacedSubstrings)
		in.Glossary = toSpecs(a.Glossary)
		if len(a.IDInsertions) > 0 {
			in.IDInsertions = make(map[string]contentbody.Value, len(a.IDInsertions))
			for id, ins := range a.IDInsertions {
				in.IDInsertions[id] = contentbody.Value{Component: ins.Component, Props: ins.Props}
			}
		}
	}
	return in
}

func toSpecs(rs []config.Replacement) []contentbody.ReplacementSpec {
	if len(rs) == 0 {
		return nil
	}
	out := make([]contentbody.ReplacementSpec, len(rs))
	for i, r := range rs {
		out[i] = contentbody.ReplacementSpec{
			SearchString:        r.SearchString,
			Component:           r.Component,
			Props:               r.Props,
			MatchAllOccurrences: r.MatchAllOccurrences,
		}
	}
	return out
}

// manifest describes the slots of a rendered file, for hosts that mount
// their own components.
type manifest struct {
	Source string         `yaml:"source"`
	Markup string         `yaml:"markup"`
	Slots  []manifestSlot `yaml:"slots,omitempty"`
	Hooks  []manifestHook `yaml:"hooks,omitempty"`
}

type manifestSlot struct {
	ID        string         `yaml:"id"`
	Component string         `yaml:"component"`
	Props     map[string]any `yaml:"props,omitempty"`
	Content   string         `yaml:"content,omitempty"`
}

type manifestHook struct {
	Event string         `yaml:"event"`
	Props map[string]any `yaml:"props,omitempty"`
}

func writeManifest(f FileToRender, r contentbody.Rendered) error {
	m := manifest{Source: f.InputPath, Markup: r.Markup}
	for _, s := range r.Slots {
		slot := manifestSlot{ID: s.ID, Component: s.Value.Component, Props: s.Value.Props}
		if s.Value.Content != nil {
			content, err := dom.InnerHTML(s.Value.Content)
			if err != nil {
				return fmt.Errorf("serializing slot %s: %w", s.ID, err)
			}
			slot.Content = content
		}
		m.Slots = append(m.Slots, slot)
	}
	for _, h := range r.Hooks {
		m.Hooks = append(m.Hooks, manifestHook{Event: h.Event, Props: h.Props})
	}

	data, err := yamlutil.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	// #nosec G306 -- manifests are meant to be readable
	if err := os.WriteFile(f.ManifestPath(), data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// printResults outputs render results and returns the failure count.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		succeeded++

		if quiet {
			continue
		}

		note := ""
		if r.Failures > 0 {
			note = fmt.Sprintf(", %d rewrite step(s) failed", r.Failures)
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d slots%s, %v)\n", r.InputPath, r.OutputPath, r.Slots, note, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s%s\n", r.OutputPath, note)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
