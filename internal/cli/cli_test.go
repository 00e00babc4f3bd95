package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brandonbloom/dispatch/dispatch"
	"github.com/brandonbloom/dispatch/internal/config"
	"github.com/google/go-cmp/cmp"
)

func runDemo(t *testing.T, cfg config.Config, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := newRegistry(cfg, &stdout, &stderr).Run(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func TestGreet(t *testing.T) {
	custom := config.Default()
	custom.Greet.Greeting = "Howdy"
	custom.Greet.Punctuation = "."

	tests := []struct {
		name string
		cfg  config.Config
		args []string
		want string
	}{
		{name: "default", cfg: config.Default(), args: []string{"greet", "bob"}, want: "Hello, bob!\n"},
		{name: "configured", cfg: custom, args: []string{"greet", "bob"}, want: "Howdy, bob.\n"},
		{name: "flags", cfg: config.Default(), args: []string{"greet", "-g", "Hi", "--shout", "bob"}, want: "HI, BOB!\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runDemo(t, tt.cfg, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
			}
			if stdout != tt.want {
				t.Fatalf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestGreetColorAlways(t *testing.T) {
	code, stdout, _ := runDemo(t, config.Default(), "--color", "always", "greet", "bob")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout, "\x1b[") || !strings.Contains(stdout, "Hello, bob!") {
		t.Fatalf("stdout = %q, want colored greeting", stdout)
	}
}

func TestAdd(t *testing.T) {
	code, stdout, _ := runDemo(t, config.Default(), "add", "1", "2", "3")
	if code != 0 || stdout != "6\n" {
		t.Fatalf("add = %d %q, want 0 %q", code, stdout, "6\n")
	}
	code, stdout, _ = runDemo(t, config.Default(), "-v", "add", "1", "2")
	if code != 0 || stdout != "1 + 2 = 3\n" {
		t.Fatalf("add -v = %d %q", code, stdout)
	}
	code, stdout, _ = runDemo(t, config.Default(), "add", "-1", "-2", "5")
	if code != 0 || stdout != "2\n" {
		t.Fatalf("add -1 -2 5 = %d %q, want 0 %q", code, stdout, "2\n")
	}
	if code, _, _ := runDemo(t, config.Default(), "add", "1", "-v"); code != dispatch.UsageExitCode {
		t.Fatalf("add 1 -v = %d, want %d", code, dispatch.UsageExitCode)
	}
	code, _, stderr := runDemo(t, config.Default(), "add", "one")
	if code != dispatch.UsageExitCode || !strings.Contains(stderr, `invalid int value: "one"`) {
		t.Fatalf("add one = %d, stderr:\n%s", code, stderr)
	}
}

func TestExitAndFail(t *testing.T) {
	if code, _, stderr := runDemo(t, config.Default(), "exit", "--code", "3"); code != 3 || stderr != "" {
		t.Fatalf("exit --code 3 = %d, stderr:\n%s", code, stderr)
	}
	if code, _, _ := runDemo(t, config.Default(), "exit"); code != dispatch.UsageExitCode {
		t.Fatalf("exit without --code = %d, want %d", code, dispatch.UsageExitCode)
	}
	code, _, stderr := runDemo(t, config.Default(), "fail", "-m", "disk on fire")
	if code != 1 || !strings.Contains(stderr, "disk on fire") {
		t.Fatalf("fail = %d, stderr:\n%s", code, stderr)
	}
}

func TestWait(t *testing.T) {
	if code, _, stderr := runDemo(t, config.Default(), "wait", "--for", "1ms"); code != 0 {
		t.Fatalf("wait = %d, stderr:\n%s", code, stderr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	r := newRegistry(config.Default(), &stdout, &stderr)
	if code := r.Run(ctx, []string{"wait", "--for", "1h"}); code != 1 {
		t.Fatalf("canceled wait = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "context canceled") {
		t.Fatalf("stderr missing cancellation:\n%s", stderr.String())
	}
}

func TestCommandsListsInventory(t *testing.T) {
	code, stdout, _ := runDemo(t, config.Default(), "commands")
	if code != 0 {
		t.Fatalf("commands = %d", code)
	}
	for _, want := range []string{
		"dispatchdemo  [--verbose] [--color WHEN]",
		"greet         [--greeting TEXT] [--shout] NAME",
		"add           NUMS...",
		"exit          --code CODE",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("inventory missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runDemo(t, config.Default(), "version")
	if code != 0 || !strings.HasPrefix(stdout, programName+" version ") {
		t.Fatalf("version = %d %q", code, stdout)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	code, stdout, stderr := runDemo(t, config.Default(), "init-config", path)
	if code != 0 || stdout != "wrote "+path+"\n" {
		t.Fatalf("init-config = %d %q, stderr:\n%s", code, stdout, stderr)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}

	if code, _, stderr := runDemo(t, config.Default(), "init-config", path); code != 1 || !strings.Contains(stderr, "already exists") {
		t.Fatalf("second init-config = %d, stderr:\n%s", code, stderr)
	}
	if code, _, _ := runDemo(t, config.Default(), "init-config", "--force", "--format", "toml", path); code != 0 {
		t.Fatalf("forced init-config = %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "log_level = ") {
		t.Fatalf("--format toml wrote:\n%s", data)
	}
}

func TestBootstrap(t *testing.T) {
	var out bytes.Buffer
	b := bootstrap(config.Default(), &out)

	got, err := b(context.Background(), dispatch.Args{"color": nil, "verbose": false})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(dispatch.Args{"color": false, "verbose": false}, got); diff != "" {
		t.Fatalf("bootstrap mismatch (-want +got):\n%s", diff)
	}

	got, err = b(context.Background(), dispatch.Args{"color": "always", "greeting": nil, "name": "x"})
	if err != nil {
		t.Fatal(err)
	}
	want := dispatch.Args{"color": true, "greeting": "Hello", "punctuation": "!", "name": "x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bootstrap mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteHonorsConfigLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.yaml")
	if err := os.WriteFile(path, []byte("log_level: \"off\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvPath, path)

	var stdout, stderr bytes.Buffer
	if code := Execute(context.Background(), []string{"fail"}, &stdout, &stderr); code != 1 {
		t.Fatalf("fail = %d, want 1", code)
	}
	if stderr.Len() != 0 {
		t.Fatalf("logging should be off, got:\n%s", stderr.String())
	}
}
