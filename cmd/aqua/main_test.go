package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestRunFile(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		src      string
		code     int
		stdout   string
		stderrIn string
	}{
		{"ok", `let x = 2; print(x * 21)`, 0, "42\n", ""},
		{"runtime error", `print(1); 1 + true`, 1, "1\n", "runtime error: Type mismatch: INTEGER + BOOLEAN"},
		{"parse error", "let x = 1;\nlet = 2;", 1, "", "^ unexpected here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, "main.aqua", tt.src)
			var stdout, stderr bytes.Buffer

			code := run([]string{path}, strings.NewReader(""), &stdout, &stderr)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.code, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.stdout)
			}
			if tt.stderrIn != "" && !strings.Contains(stderr.String(), tt.stderrIn) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), tt.stderrIn)
			}
		})
	}
}

func TestRunMissingFile(t *testing.T) {
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "nope.aqua")}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "failed to read") {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestRunREPL(t *testing.T) {
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("1 + 2\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.HasSuffix(stdout.String(), ">> 3\n>> ") {
		t.Errorf("unexpected REPL output %q", stdout.String())
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "aqua.toml"), []byte("log_level = \"warn\"\nprompt = \"$ \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rootPath, logLevel, debugAST = dir, "debug", "yaml"
	defer func() { rootPath, logLevel, debugAST = "", "", "" }()

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if config.RootPath != dir || config.LogLevel != "debug" || config.DebugAST != "yaml" || config.Prompt != "$ " {
		t.Errorf("unexpected config %+v", config)
	}

	debugAST = "xml"
	if _, err := loadConfig(); err == nil {
		t.Errorf("expected error for unsupported -debug-ast format")
	}
}
