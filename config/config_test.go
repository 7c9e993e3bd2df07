package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[grid]
width = 40
cell_size = 8.5

[aco]
ants = 10
seed = 99

[viewer]
tick_rate = "100ms"
solver = "aco"

[logging]
format = "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.Width != 40 || cfg.Grid.CellSize != 8.5 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Grid.Height != 15 {
		t.Errorf("height = %d, want default 15", cfg.Grid.Height)
	}
	if cfg.ACO.Ants != 10 || cfg.ACO.Seed != 99 || cfg.ACO.Rounds != Default().ACO.Rounds {
		t.Errorf("aco = %+v", cfg.ACO)
	}
	if cfg.Viewer.TickRate != 100*time.Millisecond || cfg.Viewer.Solver != "aco" {
		t.Errorf("viewer = %+v", cfg.Viewer)
	}

	colony := cfg.Colony()
	if colony.Ants != 10 || colony.Seed != 99 || colony.Beta != cfg.ACO.Beta {
		t.Errorf("colony config = %+v", colony)
	}
	if s := cfg.AnyAngle(8.5); s.StepSize != cfg.AStar.StepSize {
		t.Errorf("step = %v, want %v", s.StepSize, cfg.AStar.StepSize)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file loaded")
	}
	if _, err := Load(writeConfig(t, "[grid\nwidth = 3")); err == nil {
		t.Error("malformed file loaded")
	}

	_, err := Load(writeConfig(t, "[aco]\nexploitation_chance = 1.5\n[viewer]\nsolver = \"bfs\"\n"))
	if err == nil {
		t.Fatal("invalid values loaded")
	}
	for _, want := range []string{"exploitation_chance", "bfs"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestAnyAngle_ZeroStepUsesCellSize(t *testing.T) {
	cfg := Default()
	cfg.AStar.StepSize = 0
	if s := cfg.AnyAngle(12); s.StepSize != 12 {
		t.Errorf("step = %v, want 12", s.StepSize)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := NewLogger(LoggingConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: debug not enabled", format)
		}
	}
	if _, err := NewLogger(LoggingConfig{Level: "loud"}); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestBuildGrid(t *testing.T) {
	cfg := Default()
	cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.CellSize = 5, 4, 2
	cfg.Grid.OriginX = -3

	l, err := cfg.BuildGrid()
	if err != nil {
		t.Fatal(err)
	}
	g := l.Grid
	if g.Width() != 5 || g.Height() != 4 || g.Origin()[0] != -3 {
		t.Errorf("grid %dx%d at %v", g.Width(), g.Height(), g.Origin())
	}
	if g.WallCount() != 14 {
		t.Errorf("border walls = %d, want 14", g.WallCount())
	}
	if l.Start != nil || l.Goal != nil {
		t.Error("generated grid has endpoints")
	}

	cfg.Grid.Layout = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.BuildGrid(); err == nil {
		t.Error("missing layout loaded")
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")
	log, err := NewLogger(LoggingConfig{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file = %q", data)
	}
}
