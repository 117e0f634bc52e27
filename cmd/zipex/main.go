package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zipex-cli/internal/archive"
	"zipex-cli/internal/cli"
)

var subcommands = map[string]bool{
	"ls":         true,
	"tree":       true,
	"preview":    true,
	"extract":    true,
	"config":     true,
	"help":       true,
	"completion": true,
}

func rewriteDirectPreviewArgs(argv []string) []string {
	// Convenience: `zipex <archive> <path>` works like `zipex preview <archive> <path>`.
	//
	// Cobra would hand both tokens to the root command, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `zipex --pretty a.zip x.json`), so we look for the
	// first positional token rather than argv[1].
	if len(argv) < 3 {
		return argv
	}

	valueFlags := map[string]bool{
		"--format":    true,
		"--log-file":  true,
		"--log-level": true,
		"--timeout":   true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		// First positional token.
		if subcommands[a] || !archive.HasKnownExtension(a) {
			return argv
		}
		if !hasPositionalAfter(argv[i+1:], valueFlags) {
			return argv
		}
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "preview")
		out = append(out, argv[i:]...)
		return out
	}
	return argv
}

func hasPositionalAfter(rest []string, valueFlags map[string]bool) bool {
	for i := 0; i < len(rest); i++ {
		a := strings.TrimSpace(rest[i])
		if a == "" {
			continue
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		return true
	}
	return false
}

func main() {
	os.Args = rewriteDirectPreviewArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
