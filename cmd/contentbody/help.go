package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: contentbody <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Decorate HTML or Markdown content")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'contentbody help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: contentbody render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Decorate content the way the forum displays it: highlights, hover")
	fmt.Fprintln(w, "previews, collapsed footnotes, scrollable wide blocks, embeds.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .html/.htm (sanitized) or .md/.markdown file, or a directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default: beside the input)")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -a, --annotations <path>    Highlights, glossary and insertions (YAML)")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --asset-path <dir>      Override styles/ and components/")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "      --description <s>       Name of the content in log messages")
	fmt.Fprintln(w, "      --nofollow              Add rel=\"nofollow\" to every link")
	fmt.Fprintln(w, "      --no-prefetch           Disable hover preview prefetching")
	fmt.Fprintln(w, "      --no-collapse-footnotes Keep footnotes expanded")
	fmt.Fprintln(w, "      --raw-html              Keep HTML embedded in Markdown sources")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "      --width <px>            Content column width (default: 720)")
	fmt.Fprintln(w, "      --no-measure            Skip overflow detection (no browser)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output mode:")
	fmt.Fprintln(w, "      --manifest              Also write <name>.slots.yaml")
	fmt.Fprintln(w, "      --markup-only           Write slot placeholders, not components")
	fmt.Fprintln(w, "      --strict                Fail files whose rewrite steps failed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Debug logging and timings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CONTENTBODY_CONFIG, CONTENTBODY_OUTPUT_DIR, CONTENTBODY_ASSET_PATH,")
	fmt.Fprintln(w, "  CONTENTBODY_WORKERS, CONTENTBODY_WIDTH; flags take precedence.")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN selects the Chrome binary used for measurement.")
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}
	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: contentbody version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	return nil
}
