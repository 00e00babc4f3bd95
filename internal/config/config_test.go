package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		file string
		body string
	}{
		{file: "c.toml", body: "log_level = \"DEBUG\"\ncolor = \"never\"\n[greet]\ngreeting = \"Howdy\"\n"},
		{file: "c.yaml", body: "log_level: debug\ncolor: never\ngreet:\n  greeting: Howdy\n"},
	}
	want := Default()
	want.LogLevel = "debug"
	want.Color = ColorNever
	want.Greet.Greeting = "Howdy"
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), tt.file)
		if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", tt.file, err)
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Fatalf("Load(%s) mismatch (-want +got):\n%s", tt.file, diff)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		file string
		body string
		want error
	}{
		{file: "c.toml", body: "color = \"sometimes\"\n", want: ErrInvalidColor},
		{file: "c.toml", body: "log_level = \"loud\"\n", want: ErrInvalidLogLevel},
		{file: "c.json", body: "{}", want: ErrUnknownFormat},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), tt.file)
		if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, tt.want) {
			t.Fatalf("Load(%q) error = %v, want %v", tt.body, err, tt.want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Greet.Greeting = "Ahoy"
	for _, name := range []string{"nested/out.toml", "nested/out.yml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, "", cfg); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if diff := cmp.Diff(cfg, got); diff != "" {
			t.Fatalf("round trip %s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	if level, ok := cfg.Level(); !ok || level != logrus.InfoLevel {
		t.Fatalf("Level() = %v, %v; want info, true", level, ok)
	}
	cfg.LogLevel = LogLevelOff
	if _, ok := cfg.Level(); ok {
		t.Fatalf("Level() should report logging disabled for %q", LogLevelOff)
	}
}

func TestTimestamps(t *testing.T) {
	if !Default().Timestamps() {
		t.Fatalf("timestamps should default to on")
	}
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte("log_timestamps = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timestamps() {
		t.Fatalf("log_timestamps = false was ignored")
	}
}

func TestPathHonorsEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	if got := Path(); got != "/tmp/custom.yaml" {
		t.Fatalf("Path() = %q", got)
	}
}
