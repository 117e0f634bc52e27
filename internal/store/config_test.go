package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("ZIPEX_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OutDir != "" || cfg.Overwrite || cfg.Glyphs() != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv("ZIPEX_CONFIG_DIR", dir)

	in := &Config{OutDir: "/tmp/out", Overwrite: true, Timeout: "45s", LogLevel: "debug", TUI: &TUIConfig{Glyphs: "ascii"}}
	if err := SaveConfig(in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	st, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", st.Mode().Perm())
	}
	out, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.OutDir != "/tmp/out" || !out.Overwrite || out.LogLevel != "debug" || out.Glyphs() != "ascii" {
		t.Fatalf("unexpected config %+v", out)
	}
	d, err := out.TimeoutDuration()
	if err != nil || d != 45*time.Second {
		t.Fatalf("TimeoutDuration: %v %v", d, err)
	}
}

func TestSaveConfig_RejectsBadTimeout(t *testing.T) {
	t.Setenv("ZIPEX_CONFIG_DIR", t.TempDir())
	for _, v := range []string{"soon", "-3s"} {
		if err := SaveConfig(&Config{Timeout: v}); err == nil {
			t.Fatalf("expected error for timeout %q", v)
		}
	}
}

func TestLoadConfig_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ZIPEX_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveConfig_ConcurrentWritersLeaveValidFile(t *testing.T) {
	t.Setenv("ZIPEX_CONFIG_DIR", t.TempDir())

	var wg sync.WaitGroup
	errCh := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := &Config{OutDir: filepath.Join("/tmp", "out", string(rune('a'+i%26)))}
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("SaveConfig: %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig after concurrent writes: %v", err)
	}
	if cfg.OutDir == "" {
		t.Fatalf("expected a winner, got empty config")
	}
}
