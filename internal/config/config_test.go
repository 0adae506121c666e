package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kumo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	if cfg.Renderer != want.Renderer {
		t.Errorf("Renderer = %+v, want defaults %+v", cfg.Renderer, want.Renderer)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error for missing file: %v", err)
	}
	if cfg.Renderer.MaxFPS != 60 {
		t.Errorf("MaxFPS = %d, want default 60", cfg.Renderer.MaxFPS)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[renderer]
max_fps = 30
scrollback = 500

[[decorations]]
line = 4
x = 2
anchor = "right"
text = "!"
color = "#ff0000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Renderer.MaxFPS != 30 || cfg.Renderer.Scrollback != 500 {
		t.Errorf("Renderer = %+v", cfg.Renderer)
	}
	if cfg.Renderer.CellWidth != 8 {
		t.Errorf("CellWidth = %d, unset fields should keep defaults", cfg.Renderer.CellWidth)
	}
	if len(cfg.Decorations) != 1 {
		t.Fatalf("Decorations len = %d, want 1", len(cfg.Decorations))
	}
	d := cfg.Decorations[0]
	if d.Line != 4 || d.X != 2 || d.Anchor != "right" || d.Text != "!" {
		t.Errorf("Decorations[0] = %+v", d)
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeConfig(t, "renderer = not toml at all [")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on malformed TOML")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should name the file", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KUMO_MAX_FPS", "120")
	t.Setenv("KUMO_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Renderer.MaxFPS != 120 {
		t.Errorf("MaxFPS = %d, want env override 120", cfg.Renderer.MaxFPS)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "negative fps", mutate: func(c *Config) { c.Renderer.MaxFPS = -1 }, wantErr: true},
		{name: "bad anchor", mutate: func(c *Config) {
			c.Decorations = []DecorationConfig{{Anchor: "center"}}
		}, wantErr: true},
		{name: "negative line", mutate: func(c *Config) {
			c.Decorations = []DecorationConfig{{Line: -2}}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatcherReload(t *testing.T) {
	path := writeConfig(t, `[renderer]`+"\n"+`max_fps = 30`)

	reloaded := make(chan Config, 1)
	w, err := NewWatcher(path, func(c Config) {
		select {
		case reloaded <- c:
		default:
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[renderer]\nmax_fps = 90\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Renderer.MaxFPS != 90 {
			t.Errorf("reloaded MaxFPS = %d, want 90", cfg.Renderer.MaxFPS)
		}
	case <-time.After(5 * time.Second):
		// Generous bound for slow CI file systems.
		t.Fatal("no reload within timeout")
	}
}
