package routetree

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/rrbuilder/pkg/routepath"
)

// PathConflictMode controls how two non-index routes with the same composed
// path are treated.
type PathConflictMode string

const (
	// PathConflictAllow keeps both routes and disambiguates their derived ids.
	PathConflictAllow PathConflictMode = "allow"
	// PathConflictStrict reports DUPLICATE_PATH.
	PathConflictStrict PathConflictMode = "strict"
)

func (m PathConflictMode) normalize() PathConflictMode {
	switch m {
	case PathConflictStrict:
		return PathConflictStrict
	default:
		return PathConflictAllow
	}
}

func (m PathConflictMode) String() string {
	return string(m.normalize())
}

// ParsePathConflictMode parses "allow" or "strict". The empty string is
// "allow".
func ParsePathConflictMode(s string) (PathConflictMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PathConflictAllow):
		return PathConflictAllow, nil
	case string(PathConflictStrict):
		return PathConflictStrict, nil
	default:
		return "", fmt.Errorf("unknown path conflict mode %q (want allow or strict)", s)
	}
}

// Builder compiles route forests. A Builder holds no state between calls
// and is safe for concurrent use.
type Builder struct {
	logger    *slog.Logger
	conflicts PathConflictMode
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger logs every emitted descriptor at debug level.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithPathConflictMode sets the duplicate path policy.
func WithPathConflictMode(mode PathConflictMode) BuilderOption {
	return func(b *Builder) {
		b.conflicts = mode.normalize()
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{conflicts: PathConflictAllow}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// Build compiles the forest into flat descriptors with the default Builder.
func Build(nodes ...Node) ([]Descriptor, error) {
	return defaultBuilder.Build(nodes...)
}

// BuildTree compiles the forest into hierarchical descriptors with the
// default Builder.
func BuildTree(nodes ...Node) ([]Descriptor, error) {
	return defaultBuilder.BuildTree(nodes...)
}

// Build compiles the forest into flat descriptors, depth-first, parent before
// children, children in declared order.
func (b *Builder) Build(nodes ...Node) ([]Descriptor, error) {
	tree, err := b.BuildTree(nodes...)
	if err != nil {
		return nil, err
	}
	return Flatten(tree), nil
}

// BuildTree compiles the forest into hierarchical descriptors.
// On error it returns nil and a *MultiConfigError listing every problem.
func (b *Builder) BuildTree(nodes ...Node) ([]Descriptor, error) {
	c := &compilation{
		builder:  b,
		sole:     len(nodes) == 1,
		seenIDs:  make(map[string]*ConfigError),
		firstUse: make(map[string]string),
		idUses:   make(map[string]int),
		paths:    make(map[string]*ConfigError),
		pathSrc:  make(map[string]string),
	}
	explicit := make(map[string]bool)
	for _, n := range nodes {
		n.walk(func(m Node) {
			if m.id != "" && m.emits() {
				explicit[m.id] = true
			}
		})
	}
	c.ids = newIDAllocator(explicit)

	var tree []Descriptor
	for _, n := range nodes {
		tree = append(tree, c.visit(n, "", "", true)...)
	}

	if len(c.errs) > 0 {
		if b.logger != nil {
			b.logger.Debug("route tree rejected", "errors", len(c.errs))
		}
		return nil, &MultiConfigError{Errors: c.errs}
	}
	return tree, nil
}

// compilation is the state of one BuildTree call.
type compilation struct {
	builder *Builder
	ids     *idAllocator
	errs    []*ConfigError

	// sole is true when the forest has exactly one top-level node, the only
	// case where a route may compose to the empty path.
	sole bool

	// explicit id → duplicate error (nil until a second use), first source
	seenIDs  map[string]*ConfigError
	firstUse map[string]string
	idUses   map[string]int

	// composed route path → duplicate error, first source (strict mode)
	paths   map[string]*ConfigError
	pathSrc map[string]string
}

func (c *compilation) visit(n Node, prefix, parentID string, top bool) []Descriptor {
	c.errs = append(c.errs, n.errs...)

	switch n.kind {
	case KindPrefix:
		path := routepath.Join(prefix, n.segment)
		var out []Descriptor
		for _, child := range n.children {
			out = append(out, c.visit(child, path, parentID, false)...)
		}
		return out

	case KindRoute, KindLayout, KindIndex:
		return []Descriptor{c.emit(n, prefix, parentID, top)}

	default:
		c.errs = append(c.errs, &ConfigError{
			Code:    CodeInvalidNode,
			Message: "zero Node value in route forest; declare nodes with Route, Index, Layout or Prefix",
			Path:    prefix,
		})
		return nil
	}
}

func (c *compilation) emit(n Node, prefix, parentID string, top bool) Descriptor {
	// composed is the prefix handed to children; path is what the descriptor
	// reports.
	composed := routepath.Join(prefix, n.segment)
	path := composed
	switch n.kind {
	case KindIndex:
		composed = routepath.Join(prefix)
		path = composed
	case KindLayout:
		if routepath.Join(n.segment) == "" {
			path = ""
		} else if c.builder.conflicts == PathConflictStrict {
			c.checkPath(n, composed)
		}
	case KindRoute:
		if composed == "" && !(top && c.sole) {
			c.errs = append(c.errs, &ConfigError{
				Code:    CodeEmptyPath,
				Message: fmt.Sprintf("route %q resolves to an empty path; use an index route for the default child", n.label()),
				ID:      n.id,
				Sources: sourceList(n.source),
			})
		}
		if c.builder.conflicts == PathConflictStrict {
			c.checkPath(n, composed)
		}
	}

	id := n.id
	if id != "" {
		c.checkID(n)
	} else {
		id = c.ids.derive(derivedBase(n.kind, composed))
	}

	if c.builder.logger != nil {
		c.builder.logger.Debug("route descriptor",
			"id", id,
			"path", path,
			"kind", n.kind.String(),
			"parent", parentID,
		)
	}

	d := Descriptor{
		ID:       id,
		Path:     path,
		File:     n.file,
		Index:    n.kind == KindIndex,
		ParentID: parentID,
	}
	for _, child := range n.children {
		d.Children = append(d.Children, c.visit(child, composed, id, false)...)
	}
	return d
}

// checkID records explicit id collisions. All uses of one id share a single
// error, created on the second use.
func (c *compilation) checkID(n Node) {
	c.idUses[n.id]++
	first, seen := c.firstUse[n.id]
	if !seen {
		c.firstUse[n.id] = n.source
		return
	}
	dup := c.seenIDs[n.id]
	if dup == nil {
		dup = &ConfigError{
			Code:    CodeDuplicateID,
			ID:      n.id,
			Sources: sourceList(first),
		}
		c.seenIDs[n.id] = dup
		c.errs = append(c.errs, dup)
	}
	if n.source != "" {
		dup.Sources = append(dup.Sources, n.source)
	}
	dup.Message = fmt.Sprintf("route id %q is declared %d times", n.id, c.idUses[n.id])
}

// checkPath records non-index routes sharing a composed path.
func (c *compilation) checkPath(n Node, path string) {
	first, seen := c.pathSrc[path]
	if !seen {
		c.pathSrc[path] = n.source
		return
	}
	dup := c.paths[path]
	if dup == nil {
		dup = &ConfigError{
			Code:    CodeDuplicatePath,
			Message: fmt.Sprintf("duplicate route detected at %s", routepath.Canonicalize(path)),
			Path:    path,
			Sources: sourceList(first),
		}
		c.paths[path] = dup
		c.errs = append(c.errs, dup)
	}
	if n.source != "" {
		dup.Sources = append(dup.Sources, n.source)
	}
}
