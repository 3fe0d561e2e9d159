package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
root_path = "/srv/scripts"
log_level = "debug"
log_file = "/tmp/aqua.log"
debug_ast = "yaml"
`)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.RootPath != "/srv/scripts" {
		t.Errorf("RootPath wrong. got=%q", config.RootPath)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel wrong. got=%q", config.LogLevel)
	}
	if config.LogFile != "/tmp/aqua.log" {
		t.Errorf("LogFile wrong. got=%q", config.LogFile)
	}
	if config.DebugAST != "yaml" {
		t.Errorf("DebugAST wrong. got=%q", config.DebugAST)
	}
	if config.Prompt != ">> " {
		t.Errorf("Prompt should keep its default, got=%q", config.Prompt)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"unknown key", `colour = "blue"`, `unknown config key "colour"`},
		{"bad debug format", `debug_ast = "xml"`, `invalid debug_ast "xml"`},
		{"bad toml", `root_path = `, "failed to load config"},
	}

	for _, tt := range tests {
		_, err := LoadConfiguration(writeConfig(t, tt.body))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.contains) {
			t.Errorf("%s: expected error containing %q, got %q", tt.name, tt.contains, err)
		}
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestGetContextLines(t *testing.T) {
	src := "let a = 1;\nlet b = 2;\nlet = 3;"
	line, col := GetLineAndColumn(src, strings.Index(src, "= 3"))
	if line != 3 || col != 5 {
		t.Fatalf("expected 3:5, got %d:%d", line, col)
	}

	out := GetContextLines(src, line, col)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rendered lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "  >    3 | let = 3;") {
		t.Errorf("error line wrong: %q", lines[2])
	}
	if strings.Index(lines[3], "^") != strings.Index(lines[2], "=") {
		t.Errorf("caret misaligned:\n%s\n%s", lines[2], lines[3])
	}

	if GetContextLines(src, 9, 1) != "" {
		t.Errorf("out of range line should render nothing")
	}
}

func TestGetContextLinesNonASCII(t *testing.T) {
	src := "let s = \"héllo wörld\" @;"
	line, col := GetLineAndColumn(src, strings.Index(src, "@"))
	if line != 1 || col != 23 {
		t.Fatalf("expected 1:23, got %d:%d", line, col)
	}

	lines := strings.Split(GetContextLines(src, line, col), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rendered lines, got %d", len(lines))
	}
	runeIndex := func(s, sub string) int {
		return utf8.RuneCountInString(s[:strings.Index(s, sub)])
	}
	if runeIndex(lines[1], "^") != runeIndex(lines[0], "@") {
		t.Errorf("caret misaligned:\n%s\n%s", lines[0], lines[1])
	}
}
