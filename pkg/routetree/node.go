package routetree

import (
	"fmt"
	"slices"

	"github.com/vango-dev/rrbuilder/pkg/routepath"
)

// Kind is the declaration kind of a Node.
type Kind int

const (
	kindInvalid Kind = iota
	KindRoute
	KindIndex
	KindLayout
	KindPrefix
)

func (k Kind) String() string {
	switch k {
	case KindRoute:
		return "route"
	case KindIndex:
		return "index"
	case KindLayout:
		return "layout"
	case KindPrefix:
		return "prefix"
	default:
		return "invalid"
	}
}

// Node is an immutable route declaration.
//
// Nodes are created by Route, Index, Layout and Prefix and composed with
// Children, which returns a new Node. The zero value is not a valid
// declaration.
type Node struct {
	kind        Kind
	segment     string
	file        string
	id          string
	source      string
	children    []Node
	hasChildren bool

	// errs are declaration errors, reported by Err and again by Build.
	errs []*ConfigError
}

// Option configures a declaration.
type Option func(*declOptions)

type declOptions struct {
	id      string
	path    string
	hasPath bool
	source  string
}

// WithID sets an explicit route id. An empty id means "derive one".
func WithID(id string) Option {
	return func(o *declOptions) {
		o.id = id
	}
}

// WithPath sets the node's own segment. Only layouts accept a non-empty one.
func WithPath(segment string) Option {
	return func(o *declOptions) {
		o.path = segment
		o.hasPath = true
	}
}

// WithSource records where the declaration came from (e.g. "routes.yaml:12").
// It only appears in error reports.
func WithSource(source string) Option {
	return func(o *declOptions) {
		o.source = source
	}
}

func applyOptions(opts []Option) declOptions {
	var o declOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Route declares a path segment bound to a component reference.
func Route(segment, file string, opts ...Option) Node {
	o := applyOptions(opts)
	n := Node{kind: KindRoute, segment: segment, file: file, id: o.id, source: o.source}
	if o.hasPath {
		n = n.fail(CodeInvalidOption, "WithPath does not apply to routes; pass the segment to Route", nil)
	}
	n = n.checkSegment(segment)
	return n.checkFile()
}

// Index declares the default child rendered at its parent's path.
func Index(file string, opts ...Option) Node {
	o := applyOptions(opts)
	n := Node{kind: KindIndex, file: file, id: o.id, source: o.source}
	if o.path != "" {
		n = n.fail(CodeIndexPath, fmt.Sprintf("index routes cannot own a path segment (got %q)", o.path), nil)
	}
	return n.checkFile()
}

// Layout declares a wrapping node. It owns a segment only when WithPath is
// given.
func Layout(file string, opts ...Option) Node {
	o := applyOptions(opts)
	n := Node{kind: KindLayout, segment: o.path, file: file, id: o.id, source: o.source}
	n = n.checkSegment(o.path)
	return n.checkFile()
}

// Prefix groups nodes under a shared segment. The prefix itself emits no
// descriptor.
func Prefix(segment string, nodes ...Node) Node {
	n := Node{
		kind:        KindPrefix,
		segment:     segment,
		children:    slices.Clone(nodes),
		hasChildren: true,
	}
	return n.checkSegment(segment)
}

// Children returns a copy of n with the given ordered children attached.
//
// Children may be set once. A second call, a call on an index route, or a
// call on a prefix records a ConfigError on the returned node and leaves the
// existing children untouched.
func (n Node) Children(children ...Node) Node {
	switch {
	case n.kind == KindIndex:
		return n.fail(CodeIndexChildren, "index routes cannot have children", nil)
	case n.hasChildren:
		return n.fail(CodeChildrenAlreadySet, fmt.Sprintf("children already set on %s %q", n.kind, n.label()), nil)
	}
	out := n
	out.children = slices.Clone(children)
	out.hasChildren = true
	return out
}

// Kind returns the declaration kind.
func (n Node) Kind() Kind { return n.kind }

// Segment returns the node's own segment.
func (n Node) Segment() string { return n.segment }

// File returns the component reference.
func (n Node) File() string { return n.file }

// ID returns the explicit id, or "".
func (n Node) ID() string { return n.id }

// Source returns the declaration location, or "".
func (n Node) Source() string { return n.source }

// Nodes returns a copy of the node's children.
func (n Node) Nodes() []Node { return slices.Clone(n.children) }

// Err reports the declaration errors recorded on n or any of its
// descendants. It returns nil, a *ConfigError, or a *MultiConfigError.
func (n Node) Err() error {
	var errs []*ConfigError
	n.walk(func(m Node) {
		errs = append(errs, m.errs...)
	})
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiConfigError{Errors: errs}
	}
}

// Must panics if n carries a declaration error and returns n otherwise.
func Must(n Node) Node {
	if err := n.Err(); err != nil {
		panic(err)
	}
	return n
}

// Count returns the number of Route, Index and Layout nodes in the forest,
// which is the number of descriptors a successful Build returns.
func Count(nodes ...Node) int {
	count := 0
	for _, n := range nodes {
		n.walk(func(m Node) {
			if m.emits() {
				count++
			}
		})
	}
	return count
}

func (n Node) emits() bool {
	return n.kind == KindRoute || n.kind == KindIndex || n.kind == KindLayout
}

// walk visits n and its descendants depth-first in declared order.
func (n Node) walk(fn func(Node)) {
	fn(n)
	for _, child := range n.children {
		child.walk(fn)
	}
}

// fail returns a copy of n with an additional declaration error.
func (n Node) fail(code ErrorCode, msg string, cause error) Node {
	out := n
	out.errs = append(slices.Clip(n.errs), &ConfigError{
		Code:    code,
		Message: msg,
		ID:      n.id,
		Sources: sourceList(n.source),
		Err:     cause,
	})
	return out
}

func (n Node) checkSegment(segment string) Node {
	if err := routepath.ValidateSegment(segment); err != nil {
		return n.fail(CodeInvalidSegment, fmt.Sprintf("invalid segment %q", segment), err)
	}
	return n
}

func (n Node) checkFile() Node {
	if n.file == "" {
		return n.fail(CodeMissingFile, fmt.Sprintf("%s %q has no component file", n.kind, n.label()), nil)
	}
	return n
}

// label names the node in messages.
func (n Node) label() string {
	switch {
	case n.id != "":
		return n.id
	case n.segment != "":
		return n.segment
	default:
		return n.file
	}
}
