package manifest

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

const dashboard = `routes:
  - layout: routes/root.tsx
    children:
      - index: routes/home.tsx
      - route: about
        file: routes/about.tsx
      - prefix: api
        children:
          - route: users
            file: routes/api/users.ts
            id: users
  - layout: routes/dashboard/layout.tsx
    path: dashboard
    children:
      - index: routes/dashboard/home.tsx
      - route: settings
        file: routes/dashboard/settings.tsx
`

func TestParse_Dashboard(t *testing.T) {
	nodes, err := Parse("routes.yaml", []byte(dashboard))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := routetree.Count(nodes...); got != 7 {
		t.Fatalf("Count() = %d, want 7", got)
	}

	got, err := routetree.Build(nodes...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []routetree.Descriptor{
		{ID: "layout", File: "routes/root.tsx"},
		{ID: "index", File: "routes/home.tsx", Index: true, ParentID: "layout"},
		{ID: "about", Path: "about", File: "routes/about.tsx", ParentID: "layout"},
		{ID: "users", Path: "api/users", File: "routes/api/users.ts", ParentID: "layout"},
		{ID: "dashboard/layout", Path: "dashboard", File: "routes/dashboard/layout.tsx"},
		{ID: "dashboard/index", Path: "dashboard", File: "routes/dashboard/home.tsx", Index: true, ParentID: "dashboard/layout"},
		{ID: "dashboard/settings", Path: "dashboard/settings", File: "routes/dashboard/settings.tsx", ParentID: "dashboard/layout"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Sources(t *testing.T) {
	nodes, err := Parse("app/routes.yaml", []byte(dashboard))
	if err != nil {
		t.Fatal(err)
	}
	if got := nodes[0].Source(); got != "app/routes.yaml:2" {
		t.Errorf("layout source = %q", got)
	}
	if got := nodes[0].Nodes()[1].Source(); got != "app/routes.yaml:5" {
		t.Errorf("about source = %q", got)
	}
}

func TestParse_JSON(t *testing.T) {
	data := `{"routes": [{"route": "posts", "file": "routes/posts.tsx", "children": [{"index": "routes/posts/index.tsx"}]}]}`
	nodes, err := Parse("routes.json", []byte(data))
	if err != nil {
		t.Fatal(err)
	}
	got, err := routetree.Build(nodes...)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].ID != "posts/index" || got[1].ParentID != "posts" {
		t.Errorf("descriptors = %+v", got)
	}
}

func TestParse_TopLevelList(t *testing.T) {
	nodes, err := Parse("routes.yaml", []byte("- route: a\n  file: a.tsx\n- route: b\n  file: b.tsx\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Errorf("len = %d, want 2", len(nodes))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "invalid yaml",
			input: "routes: [",
			want:  []string{"M001"},
		},
		{
			name:  "empty document",
			input: "",
			want:  []string{"M006"},
		},
		{
			name:  "empty list",
			input: "routes: []",
			want:  []string{"M006"},
		},
		{
			name:  "routes not a list",
			input: "routes: posts",
			want:  []string{"M001"},
		},
		{
			name:  "unknown keys",
			input: "version: 2\nroutes:\n  - route: a\n    file: a.tsx\n    component: A\n",
			want:  []string{"M002", "M002"},
		},
		{
			name:  "missing kind",
			input: "routes:\n  - file: a.tsx\n",
			want:  []string{"M003"},
		},
		{
			name:  "two kinds",
			input: "routes:\n  - route: a\n    index: a.tsx\n",
			want:  []string{"M004"},
		},
		{
			name:  "key invalid for kind",
			input: "routes:\n  - prefix: api\n    id: api\n  - index: a.tsx\n    file: b.tsx\n",
			want:  []string{"M005", "M005"},
		},
		{
			name:  "entry not a mapping",
			input: "routes:\n  - about\n",
			want:  []string{"M001"},
		},
		{
			name:  "children not a list",
			input: "routes:\n  - route: a\n    file: a.tsx\n    children: b\n",
			want:  []string{"M001"},
		},
		{
			name:  "nested errors all reported",
			input: "routes:\n  - route: a\n    file: a.tsx\n    children:\n      - nope: x\n      - file: y\n",
			want:  []string{"M002", "M003", "M003"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Parse("routes.yaml", []byte(tt.input))
			if err == nil {
				t.Fatalf("Parse() = %d nodes, want error", len(nodes))
			}
			if nodes != nil {
				t.Error("nodes should be nil on error")
			}
			if diff := cmp.Diff(tt.want, Codes(err)); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ErrorLocation(t *testing.T) {
	_, err := Parse("routes.yaml", []byte("routes:\n  - route: a\n    file: a.tsx\n    component: A\n"))
	var list Errors
	if !stderrors.As(err, &list) || len(list) != 1 {
		t.Fatalf("err = %v", err)
	}
	loc := list[0].Location
	if loc == nil || loc.Line != 4 || loc.Column != 5 {
		t.Errorf("Location = %+v, want line 4 column 5", loc)
	}
	if !strings.Contains(err.Error(), "routes.yaml:4:5: M002") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParse_BuilderErrorsCarryLines(t *testing.T) {
	input := `routes:
  - route: posts
    file: routes/posts.tsx
    id: posts
  - route: about
    file: routes/about.tsx
    id: posts
`
	nodes, err := Parse("routes.yaml", []byte(input))
	if err != nil {
		t.Fatal(err)
	}
	_, err = routetree.Build(nodes...)
	converted := errors.FromConfigErrors(err)
	if len(converted) != 1 {
		t.Fatalf("errors = %v", err)
	}
	if converted[0].Code != "R011" || converted[0].Location == nil || converted[0].Location.Line != 2 {
		t.Errorf("converted = %+v", converted[0])
	}
	if !strings.Contains(converted[0].Detail, "routes.yaml:5") {
		t.Errorf("Detail = %q, want second declaration", converted[0].Detail)
	}
}

func TestParse_IndexWithPathReachesBuilder(t *testing.T) {
	nodes, err := Parse("routes.yaml", []byte("routes:\n  - index: home.tsx\n    path: home\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = routetree.Build(nodes...)
	ces := routetree.ConfigErrors(err)
	if len(ces) != 1 || ces[0].Code != routetree.CodeIndexPath {
		t.Errorf("errors = %v", err)
	}
}
