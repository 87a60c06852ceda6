package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: options{Capacity: 20},
		},
		{
			name: "long flags",
			args: []string{"-config", "demo.toml", "-script", "s.lua", "-capacity", "-1", "-log-level", "debug"},
			want: options{ConfigPath: "demo.toml", ScriptPath: "s.lua", Capacity: -1, LogLevel: "debug", capacitySet: true},
		},
		{
			name: "short flags",
			args: []string{"-c", "demo.yaml", "-s", "s.lua"},
			want: options{ConfigPath: "demo.yaml", ScriptPath: "s.lua", Capacity: 20},
		},
		{
			name:    "invalid log level",
			args:    []string{"-log-level", "loud"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-x"},
			wantErr: true,
		},
		{
			name:    "positional argument",
			args:    []string{"file.txt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got, err := parseFlags(tt.args, &stdout, &stderr)
			if tt.wantErr {
				if err == nil {
					t.Error("parseFlags() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRun_VersionAndHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-v"}, &stdout, &stderr); code != 0 {
		t.Errorf("run(-v) = %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "undoredo dev") {
		t.Errorf("version output = %q", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"-h"}, &stdout, &stderr); code != 0 {
		t.Errorf("run(-h) = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "Usage: undoredo") {
		t.Errorf("help output = %q", stderr.String())
	}
}

func TestRun_BadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "loud"}, &stdout, &stderr); code != 2 {
		t.Errorf("run(bad level) = %d, want 2", code)
	}
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[history\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-c", path, "-s", "unused.lua"}, &stdout, &stderr); code != 1 {
		t.Errorf("run(bad config) = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "failed to load configuration") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_Script(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.lua")
	code := `
for i = 1, 4 do scene.spawn() end
history.undo()
print("can redo", history.can_redo())
`
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if got := run([]string{"-s", path, "-capacity", "3", "-log-level", "error"}, &stdout, &stderr); got != 0 {
		t.Fatalf("run(script) = %d, stderr = %s", got, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "can redo\ttrue") {
		t.Errorf("script output missing print: %q", out)
	}
	if !strings.Contains(out, "records: 3  undo: 2  redo: 1  objects: 3") {
		t.Errorf("summary = %q", out)
	}
}

func TestRun_ScriptError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.lua")
	if err := os.WriteFile(path, []byte(`error("stop here")`), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-s", path}, &stdout, &stderr); code != 1 {
		t.Errorf("run(broken script) = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "stop here") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
