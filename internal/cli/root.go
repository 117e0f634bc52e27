package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zipex-cli/internal/format"
	"zipex-cli/internal/logging"
	"zipex-cli/internal/session"
	"zipex-cli/internal/sink"
	"zipex-cli/internal/store"
	"zipex-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	PrettyJSON bool
	Format     string
	LogFile    string
	LogLevel   string
	Timeout    time.Duration

	cfg *store.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "zipex [archive]",
		Short:        "Browse, preview and extract archives (CLI + TUI)",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Start the interactive browser (a file picker opens without an archive)
  zipex
  zipex photos.zip

  # Scriptable commands
  zipex ls photos.zip
  zipex tree photos.zip --expand-all
  zipex preview photos.zip meta/info.json
  zipex extract photos.zip --all --out ./photos
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive browser.
			archivePath := ""
			if len(args) == 1 {
				archivePath = args[0]
			}
			return runTUI(cmd, app, archivePath)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// config subcommands must still run against a broken file so it can be fixed.
		repairing := isConfigCmd(cmd)
		cfg, err := store.LoadConfig()
		if err != nil {
			if !repairing {
				return writeErr(cmd, err)
			}
			cfg = &store.Config{}
		}
		app.cfg = cfg

		if !cmd.Flags().Changed("log-level") && os.Getenv("ZIPEX_LOG_LEVEL") == "" && cfg.LogLevel != "" {
			app.LogLevel = cfg.LogLevel
		}
		if !cmd.Flags().Changed("timeout") && os.Getenv("ZIPEX_TIMEOUT") == "" {
			d, err := cfg.TimeoutDuration()
			if err != nil && !repairing {
				return writeErr(cmd, err)
			}
			app.Timeout = d
		}
		if app.Timeout < 0 {
			return writeErr(cmd, fmt.Errorf("--timeout must not be negative"))
		}

		log, err := logging.Init(logging.Config{
			Level:      app.LogLevel,
			Format:     "console",
			OutputPath: app.LogFile,
		})
		if err != nil {
			return writeErr(cmd, fmt.Errorf("init logging: %w", err))
		}
		app.log = log.With(zap.String("command", cmd.Name()))
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		_ = logging.Sync()
		return nil
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ZIPEX_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("ZIPEX_LOG_FILE", ""), "Write logs to this file (stderr|stdout|path; empty disables logging)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("ZIPEX_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", envDuration("ZIPEX_TIMEOUT", 0), "Bound on archive loads and single entry retrievals (0 = no limit)")

	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newPreviewCmd(app))
	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App, archivePath string) error {
	sess := newSession(app, defaultSink(app))
	return tui.Run(cmd.Context(), tui.Options{
		Session: sess,
		Archive: archivePath,
		Glyphs:  app.cfg.Glyphs(),
		Log:     app.log,
	})
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.HasParent() && !c.Parent().HasParent() {
			return true
		}
	}
	return false
}

func defaultSink(app *App) sink.DirSink {
	return sink.DirSink{Dir: app.cfg.OutDir, Overwrite: app.cfg.Overwrite}
}

func newSession(app *App, out sink.Sink) *session.Session {
	return session.New(session.Options{
		Sink:    out,
		Log:     app.log,
		Timeout: app.Timeout,
	})
}

// loadArchive reads path from disk and loads it into a fresh session.
func loadArchive(ctx context.Context, app *App, path string, out sink.Sink) (*session.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sess := newSession(app, out)
	if err := sess.Load(ctx, filepath.Base(path), raw); err != nil {
		return nil, err
	}
	return sess, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envDuration(k string, d time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return parsed
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
