package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

// run executes the CLI in dir and returns stdout, stderr and the error.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInitBuildCheckInspect(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()
	dir := t.TempDir()

	if _, _, err := run(t, dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{"rrbuilder.json", "routes.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("init did not create %s", name)
		}
	}

	out, _, err := run(t, dir, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "7 routes, no conflicts") {
		t.Errorf("check output:\n%s", out)
	}

	if _, _, err := run(t, dir, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "routes.json"))
	if err != nil {
		t.Fatal(err)
	}
	var descs []routetree.Descriptor
	if err := json.Unmarshal(data, &descs); err != nil {
		t.Fatal(err)
	}
	if len(descs) != 7 || descs[len(descs)-1].ID != "api-health" {
		t.Errorf("descriptors = %+v", descs)
	}

	out, _, err = run(t, dir, "inspect")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"/posts/:postId", "└── /api/health", "(index)"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildToStdout(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "routes.yaml")
	os.WriteFile(manifest, []byte("routes:\n  - route: about\n    file: about.tsx\n"), 0644)

	out, _, err := run(t, dir, "build", "-m", manifest, "-o", "-", "--encoding", "yaml")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.TrimSpace(out) != "- id: about\n  path: about\n  file: about.tsx\n  index: false" {
		t.Errorf("stdout:\n%s", out)
	}
}

func TestCheckReportsConflicts(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "routes.yaml")
	os.WriteFile(manifest, []byte("routes:\n  - route: a\n    file: a.tsx\n  - route: a\n    file: b.tsx\n"), 0644)

	if _, _, err := run(t, dir, "check", "-m", manifest); err != nil {
		t.Fatalf("allow mode: %v", err)
	}
	_, _, err := run(t, dir, "check", "-m", manifest, "--strict")
	if ces := routetree.ConfigErrors(err); len(ces) != 1 || ces[0].Code != routetree.CodeDuplicatePath {
		t.Errorf("strict check error = %v", err)
	}
}

func TestBrokenConfigWithManifestFlag(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "routes.yaml")
	os.WriteFile(manifest, []byte("routes:\n  - route: a\n    file: a.tsx\n  - route: a\n    file: b.tsx\n"), 0644)

	tests := []struct {
		name   string
		config string
		code   string
	}{
		{name: "invalid value", config: `{"pathConflict":"strict","format":"bogus"}`, code: "C121"},
		{name: "parse failure", config: `{"pathConflict":`, code: "C120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.WriteFile(filepath.Join(dir, "rrbuilder.json"), []byte(tt.config), 0644)
			_, _, err := run(t, dir, "check", "-m", manifest)
			if err == nil || !strings.Contains(err.Error(), tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	// A valid config keeps its settings when --manifest overrides the path.
	os.WriteFile(filepath.Join(dir, "rrbuilder.json"), []byte(`{"pathConflict":"strict"}`), 0644)
	_, _, err := run(t, dir, "check", "-m", manifest)
	if ces := routetree.ConfigErrors(err); len(ces) != 1 || ces[0].Code != routetree.CodeDuplicatePath {
		t.Errorf("err = %v, want DUPLICATE_PATH", err)
	}
}

func TestMissingConfig(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "check")
	if err == nil || !strings.Contains(err.Error(), "C141") {
		t.Errorf("err = %v, want C141", err)
	}
}

func TestVersionShort(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version", "--short")
	if err != nil || strings.TrimSpace(out) != resolvedVersion() {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestInitTemplates(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "init", "--list")
	if err != nil || !strings.Contains(out, "dashboard") {
		t.Errorf("init --list = %q, %v", out, err)
	}

	dir := t.TempDir()
	if _, _, err := run(t, dir, "init", "--template", "dashboard", "--toml"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "rrbuilder.toml")); err != nil {
		t.Error("rrbuilder.toml not written")
	}
	out, _, err = run(t, dir, "inspect", "--flat")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "/dashboard/users/:userId?") || !strings.Contains(out, " userId? ") || !strings.Contains(out, "PARAMS") {
		t.Errorf("inspect --flat output:\n%s", out)
	}

	_, _, err = run(t, t.TempDir(), "init", "--template", "nope")
	if err == nil || !strings.Contains(err.Error(), "C145") {
		t.Errorf("err = %v, want C145", err)
	}
}
