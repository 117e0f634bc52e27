package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"zipex-cli/internal/store"

	"github.com/spf13/cobra"
)

// configKeys maps the user-facing key to a setter on store.Config. An empty
// value clears the key.
var configKeys = map[string]func(cfg *store.Config, v string) error{
	"outDir": func(cfg *store.Config, v string) error {
		cfg.OutDir = v
		return nil
	},
	"overwrite": func(cfg *store.Config, v string) error {
		if v == "" {
			cfg.Overwrite = false
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("overwrite: expected true|false, got %q", v)
		}
		cfg.Overwrite = b
		return nil
	},
	"timeout": func(cfg *store.Config, v string) error {
		cfg.Timeout = v
		_, err := cfg.TimeoutDuration()
		return err
	},
	"logLevel": func(cfg *store.Config, v string) error {
		switch v {
		case "", "debug", "info", "warn", "error":
			cfg.LogLevel = v
			return nil
		}
		return fmt.Errorf("logLevel: expected debug|info|warn|error, got %q", v)
	},
	"tui.glyphs": func(cfg *store.Config, v string) error {
		switch v {
		case "":
			cfg.TUI = nil
			return nil
		case "unicode", "ascii":
			if cfg.TUI == nil {
				cfg.TUI = &store.TUIConfig{}
			}
			cfg.TUI.Glyphs = v
			return nil
		}
		return fmt.Errorf("tui.glyphs: expected unicode|ascii, got %q", v)
	},
}

func configKeyNames() []string {
	out := make([]string, 0, len(configKeys))
	for k := range configKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved preferences",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	cmd.AddCommand(newConfigUnsetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": app.cfg,
				"meta": map[string]any{"path": path},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference (" + strings.Join(configKeyNames(), "|") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, app, args[0], strings.TrimSpace(args[1]))
		},
	}
}

func newConfigUnsetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Clear a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, app, args[0], "")
		},
	}
}

func updateConfig(cmd *cobra.Command, app *App, key, value string) error {
	set, ok := configKeys[key]
	if !ok {
		return writeErr(cmd, fmt.Errorf("unknown config key %q (expected %s)", key, strings.Join(configKeyNames(), "|")))
	}
	cfg := *app.cfg
	if cfg.TUI != nil {
		tuiCfg := *cfg.TUI
		cfg.TUI = &tuiCfg
	}
	if err := set(&cfg, value); err != nil {
		return writeErr(cmd, err)
	}
	if err := store.SaveConfig(&cfg); err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = &cfg
	return writeOut(cmd, app, map[string]any{"data": app.cfg})
}
