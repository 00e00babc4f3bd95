package main_test

import (
	"embed"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Embed transcript fixtures so changes invalidate the Go test cache.
//
//go:embed transcripts/*
var transcriptFS embed.FS

func TestTranscripts(t *testing.T) {
	// Ensure the embed is referenced so it isn't optimized away.
	if _, err := transcriptFS.ReadDir("transcripts"); err != nil {
		t.Fatalf("read embedded transcripts: %v", err)
	}

	if _, err := exec.LookPath("transcript"); err != nil {
		t.Skipf("transcript not found on PATH (install with `go install tool`): %v", err)
	}

	paths, err := filepath.Glob("transcripts/*.cmdt")
	if err != nil {
		t.Fatalf("glob transcripts: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no transcripts found under transcripts/*.cmdt")
	}
	sort.Strings(paths)

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "dispatchdemo"), "./cmd/dispatchdemo")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build dispatchdemo: %v\n%s", err, out)
	}
	configPath, err := filepath.Abs(filepath.Join("transcripts", "dispatchdemo.toml"))
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := exec.Command("transcript", "check", path)
			cmd.Env = append(os.Environ(),
				"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
				"DISPATCHDEMO_CONFIG="+configPath,
			)

			out, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatalf("transcript check failed for %s: %v\n%s", path, err, out)
			}
		})
	}
}
