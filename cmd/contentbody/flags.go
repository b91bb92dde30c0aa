package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// contentFlags holds flags that change how content is decorated.
type contentFlags struct {
	annotations         string
	description         string
	nofollow            bool
	noPrefetch          bool
	noCollapseFootnotes bool
	rawHTML             bool
}

// measureFlags holds layout measurement flags.
type measureFlags struct {
	width     int
	noMeasure bool
}

// outputFlags holds output mode flags.
type outputFlags struct {
	manifest   bool // Write <name>.slots.yaml beside the page
	markupOnly bool // Write placeholders instead of projected components
	strict     bool // Fail a file when any rewrite step failed
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	output    string
	workers   int
	assetPath string
	content   contentFlags
	measure   measureFlags
	mode      outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and timings")
}

// addContentFlags adds content decoration flags to a FlagSet.
func addContentFlags(fs *flag.FlagSet, f *contentFlags) {
	fs.StringVarP(&f.annotations, "annotations", "a", "", "annotations file (highlights, glossary, insertions)")
	fs.StringVar(&f.description, "description", "", "name of the content in log messages")
	fs.BoolVar(&f.nofollow, "nofollow", false, "add rel=\"nofollow\" to every link")
	fs.BoolVar(&f.noPrefetch, "no-prefetch", false, "disable hover preview prefetching")
	fs.BoolVar(&f.noCollapseFootnotes, "no-collapse-footnotes", false, "keep footnotes expanded")
	fs.BoolVar(&f.rawHTML, "raw-html", false, "keep HTML embedded in Markdown sources")
}

// addMeasureFlags adds measurement flags to a FlagSet.
func addMeasureFlags(fs *flag.FlagSet, f *measureFlags) {
	fs.IntVar(&f.width, "width", 0, "content column width in CSS pixels (0 = config)")
	fs.BoolVar(&f.noMeasure, "no-measure", false, "skip overflow detection (no browser)")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.manifest, "manifest", false, "also write <name>.slots.yaml")
	fs.BoolVar(&f.markupOnly, "markup-only", false, "write slot placeholders instead of components")
	fs.BoolVar(&f.strict, "strict", false, "fail files whose rewrite steps failed")
}

// parseRenderFlags parses flags for the render command.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding styles/ and components/")

	addCommonFlags(fs, &f.common)
	addContentFlags(fs, &f.content)
	addMeasureFlags(fs, &f.measure)
	addOutputFlags(fs, &f.mode)

	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
