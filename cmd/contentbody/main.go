package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for command dispatch.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "contentbody %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return report(runHelp(rest, env), env)
	case "render":
	default:
		return report(fmt.Errorf("%w: %q", ErrUnknownCommand, cmd), env)
	}

	flags, positional, err := parseRenderFlags(rest, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return report(fmt.Errorf("%w: %w", ErrUsage, err), env)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return report(runRender(ctx, positional, flags, env), env)
}

// report prints err and maps it to an exit code.
func report(err error, env *Environment) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(env.Stderr, "error:", err)
	if errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintln(env.Stderr, "Run 'contentbody help' for usage.")
	}
	return exitCodeFor(err)
}
