package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/metrics"
	"github.com/vango-dev/rrbuilder/internal/source"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

const manifestYAML = `routes:
  - route: posts
    file: routes/posts.tsx
    children:
      - index: routes/posts/index.tsx
      - route: ":postId"
        file: routes/posts/post.tsx
  - prefix: api
    children:
      - route: users
        file: routes/api/users.ts
`

func setup(t *testing.T, content string) (string, source.Source) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, &source.File{Path: path}
}

func TestBuild_JSON(t *testing.T) {
	dir, src := setup(t, manifestYAML)
	out := filepath.Join(dir, "out", "routes.json")

	var steps []string
	m := metrics.New()
	b := New(config.New(), src, Options{
		Output:     out,
		Metrics:    m,
		OnProgress: func(step string) { steps = append(steps, step) },
	})

	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.Count != 4 || result.Output != out || result.Unchanged {
		t.Errorf("result = %+v", result)
	}
	if len(steps) != 5 {
		t.Errorf("progress steps = %v", steps)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got []routetree.Descriptor
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	want := []routetree.Descriptor{
		{ID: "posts", Path: "posts", File: "routes/posts.tsx"},
		{ID: "posts/index", Path: "posts", File: "routes/posts/index.tsx", Index: true, ParentID: "posts"},
		{ID: "posts/:postId", Path: "posts/:postId", File: "routes/posts/post.tsx", ParentID: "posts"},
		{ID: "api/users", Path: "api/users", File: "routes/api/users.ts"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if got := buildsTotal(t, m, metrics.StatusOK); got != 1 {
		t.Errorf("builds_total{ok} = %v, want 1", got)
	}
}

// buildsTotal reads rrbuilder_builds_total for one status.
func buildsTotal(t *testing.T, m *metrics.Metrics, status string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "rrbuilder_builds_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == status {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBuild_Unchanged(t *testing.T) {
	dir, src := setup(t, manifestYAML)
	out := filepath.Join(dir, "routes.json")
	b := New(config.New(), src, Options{Output: out})

	if _, err := b.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !second.Unchanged {
		t.Error("second build should leave the output untouched")
	}

	if err := b.Clean(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Clean() should remove the output")
	}
	if err := b.Clean(); err != nil {
		t.Errorf("Clean() twice = %v", err)
	}
}

func TestBuild_StdoutTreeYAML(t *testing.T) {
	_, src := setup(t, manifestYAML)
	var stdout bytes.Buffer
	b := New(config.New(), src, Options{
		Output:   "-",
		Format:   config.FormatTree,
		Encoding: config.EncodingYAML,
		Stdout:   &stdout,
	})

	if _, err := b.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	var got []routetree.Descriptor
	if err := yaml.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout.String())
	}
	if len(got) != 2 || len(got[0].Children) != 2 || got[1].ID != "api/users" {
		t.Errorf("tree = %+v", got)
	}
}

func TestCompile(t *testing.T) {
	dir, src := setup(t, manifestYAML)
	out := filepath.Join(dir, "routes.json")
	result, err := New(config.New(), src, Options{Output: out}).Compile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Tree) != 2 || len(result.Flat) != 4 {
		t.Errorf("Tree = %d, Flat = %d", len(result.Tree), len(result.Flat))
	}
	if result.Output != "" || result.Encoded != nil {
		t.Error("Compile should not encode or write")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Compile should not create the output")
	}
}

func TestBuild_Failures(t *testing.T) {
	tests := []struct {
		name       string
		manifest   string
		missing    bool
		wantStatus string
		wantText   string
	}{
		{
			name:       "missing manifest",
			missing:    true,
			wantStatus: metrics.StatusError,
			wantText:   "S001",
		},
		{
			name:       "malformed manifest",
			manifest:   "routes:\n  - file: a.tsx\n",
			wantStatus: metrics.StatusInvalid,
			wantText:   "M003",
		},
		{
			name:       "route conflicts",
			manifest:   "routes:\n  - route: a\n    file: a.tsx\n    id: x\n  - route: b\n    file: b.tsx\n    id: x\n",
			wantStatus: metrics.StatusInvalid,
			wantText:   "DUPLICATE_ID",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, src := setup(t, tt.manifest)
			if tt.missing {
				src = &source.File{Path: filepath.Join(dir, "nope.yaml")}
			}
			out := filepath.Join(dir, "routes.json")
			m := metrics.New()

			result, err := New(config.New(), src, Options{Output: out, Metrics: m}).Build(context.Background())
			if err == nil {
				t.Fatalf("Build() = %+v, want error", result)
			}
			if result != nil {
				t.Error("result should be nil on failure")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error = %v, want %s", err, tt.wantText)
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Error("failed build should not write output")
			}
			if got := buildsTotal(t, m, tt.wantStatus); got != 1 {
				t.Errorf("builds_total{%s} = %v, want 1", tt.wantStatus, got)
			}
		})
	}
}

func TestBuild_StrictPaths(t *testing.T) {
	_, src := setup(t, "routes:\n  - route: a\n    file: a.tsx\n  - route: a\n    file: b.tsx\n")
	cfg := config.New()

	if _, err := New(cfg, src, Options{Output: "-", Stdout: &bytes.Buffer{}}).Build(context.Background()); err != nil {
		t.Fatalf("allow mode: %v", err)
	}

	cfg.PathConflict = "strict"
	_, err := New(cfg, src, Options{Output: "-", Stdout: &bytes.Buffer{}}).Build(context.Background())
	if ces := routetree.ConfigErrors(err); len(ces) != 1 || ces[0].Code != routetree.CodeDuplicatePath {
		t.Errorf("strict mode error = %v", err)
	}
}

func TestEncode(t *testing.T) {
	descs := []routetree.Descriptor{{ID: "root", File: "home.tsx"}}

	js, err := Encode(descs, config.EncodingJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(js), `"id": "root"`) || !strings.Contains(string(js), `"index": false`) {
		t.Errorf("JSON = %s", js)
	}

	empty, err := Encode(nil, config.EncodingJSON)
	if err != nil || strings.TrimSpace(string(empty)) != "[]" {
		t.Errorf("empty JSON = %q, %v", empty, err)
	}

	ym, err := Encode(descs, config.EncodingYAML)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ym), "id: root") {
		t.Errorf("YAML = %s", ym)
	}

	if _, err := Encode(descs, "xml"); err == nil || !strings.Contains(err.Error(), "O002") {
		t.Errorf("Encode(xml) error = %v", err)
	}
}
