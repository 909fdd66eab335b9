package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// isolate points every search path at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want none", cfg.File)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.Tick != time.Second/60 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.Persist.Backends, []string{"disk"}) {
		t.Errorf("Backends = %v", cfg.Persist.Backends)
	}
	if got, want := cfg.EngineConfig(), engine.DefaultConfig(); got != want {
		t.Errorf("EngineConfig() = %+v, want %+v", got, want)
	}
	if cfg.Persist.Mongo.Database != "cardspace" || cfg.Persist.Redis.Addr != "localhost:6379" {
		t.Errorf("Persist = %+v", cfg.Persist)
	}
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := write(t, dir, "custom.toml", `
data = "election.json"

[persist]
backends = ["disk", "sqlite"]
key = "tokyo"

[persist.sqlite]
path = "/tmp/x.db"

[persist.redis]
db = 3

[engine]
near_field = 1500
duration = "500ms"

[engine.viewport]
width = 1024
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.File != path || cfg.Data != "election.json" {
		t.Errorf("File = %q, Data = %q", cfg.File, cfg.Data)
	}
	pc := cfg.PersistConfig()
	if !reflect.DeepEqual(pc.Backends, []string{"disk", "sqlite"}) || pc.SQLite != "/tmp/x.db" || pc.Redis.DB != 3 {
		t.Errorf("PersistConfig() = %+v", pc)
	}
	if cfg.Persist.Key != "tokyo" {
		t.Errorf("Key = %q", cfg.Persist.Key)
	}
	ec := cfg.EngineConfig()
	if ec.NearField != 1500 || ec.Duration != 500*time.Millisecond || ec.Width != 1024 {
		t.Errorf("EngineConfig() = %+v", ec)
	}
	if ec.Height != engine.DefaultConfig().Height {
		t.Errorf("Height = %v, want default", ec.Height)
	}
}

func TestLoadSearchPath(t *testing.T) {
	dir := isolate(t)
	sub := filepath.Join(dir, "cardspace")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, sub, "cardspace.yaml", "server:\n  addr: \":9999\"\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CARDSPACE_SERVER_ADDR", "127.0.0.1:1")
	t.Setenv("CARDSPACE_PERSIST_BACKENDS", "disk,redis")
	t.Setenv("CARDSPACE_ENGINE_HIDE_DELAY", "1s")
	t.Setenv("CARDSPACE_ENGINE_LOD", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:1" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if !reflect.DeepEqual(cfg.Persist.Backends, []string{"disk", "redis"}) {
		t.Errorf("Backends = %v", cfg.Persist.Backends)
	}
	if cfg.Engine.HideDelay != time.Second || !cfg.Engine.LOD {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)
	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml")},
		{"syntax", write(t, dir, "bad.toml", "[engine\n")},
		{"near field", write(t, dir, "nf.toml", "[engine]\nnear_field = 0\n")},
		{"viewport", write(t, dir, "vp.toml", "[engine.viewport]\nheight = -1\n")},
		{"tick", write(t, dir, "tick.toml", "[server]\ntick = \"0s\"\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	cfg := &Config{}
	cat, err := cfg.LoadCatalog()
	if err != nil || cat == nil {
		t.Fatalf("LoadCatalog() = %v, %v", cat, err)
	}
	cfg.Catalog = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := cfg.LoadCatalog(); err == nil {
		t.Error("LoadCatalog() accepted a missing file")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"disk, redis", "mongo"})
	if want := []string{"disk", "redis", "mongo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}
