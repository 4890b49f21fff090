package routetree

import (
	"errors"
	"testing"

	"github.com/vango-dev/rrbuilder/pkg/routepath"
)

func codeOf(t *testing.T, err error) ErrorCode {
	t.Helper()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
	}
	return ce.Code
}

func TestDeclarationsAreValid(t *testing.T) {
	nodes := []Node{
		Route("posts", "routes/posts.tsx"),
		Index("routes/home.tsx"),
		Layout("routes/root.tsx"),
		Layout("routes/dash.tsx", WithPath("dashboard")),
		Prefix("api", Route("users", "routes/users.ts")),
	}
	for _, n := range nodes {
		if err := n.Err(); err != nil {
			t.Errorf("%s: unexpected error: %v", n.Kind(), err)
		}
	}
}

func TestIndexWithPathFailsAtDeclaration(t *testing.T) {
	n := Index("routes/home.tsx", WithPath("home"))
	err := n.Err()
	if err == nil {
		t.Fatal("expected error for index with a path segment")
	}
	if code := codeOf(t, err); code != CodeIndexPath {
		t.Errorf("code = %s, want %s", code, CodeIndexPath)
	}
	if !errors.Is(err, ErrConfig) {
		t.Error("expected errors.Is(err, ErrConfig)")
	}

	// An explicitly empty path is not a segment.
	if err := Index("routes/home.tsx", WithPath("")).Err(); err != nil {
		t.Errorf("unexpected error for empty index path: %v", err)
	}
}

func TestRouteRejectsWithPath(t *testing.T) {
	err := Route("a", "a.tsx", WithPath("b")).Err()
	if code := codeOf(t, err); code != CodeInvalidOption {
		t.Errorf("code = %s, want %s", code, CodeInvalidOption)
	}
}

func TestInvalidSegment(t *testing.T) {
	err := Route("../admin", "admin.tsx").Err()
	if code := codeOf(t, err); code != CodeInvalidSegment {
		t.Errorf("code = %s, want %s", code, CodeInvalidSegment)
	}
	if !errors.Is(err, routepath.ErrDotSegment) {
		t.Errorf("expected wrapped ErrDotSegment, got %v", err)
	}

	if err := Prefix("a\\b").Err(); err == nil {
		t.Error("expected error for backslash in prefix")
	}
	if err := Layout("l.tsx", WithPath("%GG")).Err(); err == nil {
		t.Error("expected error for invalid escape in layout path")
	}
}

func TestMissingFile(t *testing.T) {
	for _, n := range []Node{Route("a", ""), Index(""), Layout("")} {
		err := n.Err()
		if code := codeOf(t, err); code != CodeMissingFile {
			t.Errorf("%s: code = %s, want %s", n.Kind(), code, CodeMissingFile)
		}
	}
}

func TestChildrenTwiceFails(t *testing.T) {
	first := Route("a", "a1.tsx")
	second := Route("b", "b1.tsx")

	n := Route("posts", "posts.tsx").Children(first).Children(second)
	err := n.Err()
	if code := codeOf(t, err); code != CodeChildrenAlreadySet {
		t.Fatalf("code = %s, want %s", code, CodeChildrenAlreadySet)
	}

	kids := n.Nodes()
	if len(kids) != 1 || kids[0].Segment() != "a" {
		t.Errorf("children were replaced: %+v", kids)
	}
}

func TestChildrenOnIndexFails(t *testing.T) {
	err := Index("i.tsx").Children(Route("x", "x.tsx")).Err()
	if code := codeOf(t, err); code != CodeIndexChildren {
		t.Errorf("code = %s, want %s", code, CodeIndexChildren)
	}
}

func TestChildrenOnPrefixFails(t *testing.T) {
	err := Prefix("api").Children(Route("x", "x.tsx")).Err()
	if code := codeOf(t, err); code != CodeChildrenAlreadySet {
		t.Errorf("code = %s, want %s", code, CodeChildrenAlreadySet)
	}
}

func TestChildrenDoesNotMutateReceiver(t *testing.T) {
	base := Route("posts", "posts.tsx")
	withKids := base.Children(Index("i.tsx"))

	if len(base.Nodes()) != 0 {
		t.Error("receiver gained children")
	}
	if err := base.Children(Route("x", "x.tsx")).Err(); err != nil {
		t.Errorf("original node should still accept children: %v", err)
	}
	if len(withKids.Nodes()) != 1 {
		t.Errorf("len(children) = %d, want 1", len(withKids.Nodes()))
	}
}

func TestChildrenCopiesInput(t *testing.T) {
	kids := []Node{Route("a", "a.tsx"), Route("b", "b.tsx")}
	n := Layout("l.tsx").Children(kids...)
	kids[0] = Route("z", "z.tsx")

	if got := n.Nodes()[0].Segment(); got != "a" {
		t.Errorf("first child segment = %q, want %q", got, "a")
	}
}

func TestErrCollectsDescendants(t *testing.T) {
	n := Layout("l.tsx").Children(
		Index("i.tsx", WithPath("x")),
		Route("../y", "y.tsx"),
	)
	var multi *MultiConfigError
	if !errors.As(n.Err(), &multi) {
		t.Fatalf("expected *MultiConfigError, got %T", n.Err())
	}
	if len(multi.Errors) != 2 {
		t.Errorf("len(errors) = %d, want 2", len(multi.Errors))
	}
}

func TestMust(t *testing.T) {
	n := Must(Route("ok", "ok.tsx"))
	if n.Segment() != "ok" {
		t.Errorf("Must returned %+v", n)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrConfig) {
			t.Errorf("panic value = %v, want config error", r)
		}
	}()
	Must(Index("i.tsx", WithPath("nope")))
}

func TestWithSourceAppearsInError(t *testing.T) {
	err := Index("i.tsx", WithPath("x"), WithSource("routes.yaml:7")).Err()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if ce.Source() != "routes.yaml:7" {
		t.Errorf("Source() = %q", ce.Source())
	}
}

func TestCount(t *testing.T) {
	forest := []Node{
		Layout("root.tsx").Children(
			Index("home.tsx"),
			Prefix("api",
				Route("users", "users.ts"),
				Prefix("v2", Route("items", "items.ts")),
			),
		),
		Route("about", "about.tsx"),
	}
	if got := Count(forest...); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindRoute:   "route",
		KindIndex:   "index",
		KindLayout:  "layout",
		KindPrefix:  "prefix",
		kindInvalid: "invalid",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
