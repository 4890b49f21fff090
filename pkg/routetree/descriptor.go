package routetree

// Descriptor is one route registration record for a router configuration
// loader.
type Descriptor struct {
	// ID uniquely identifies the route within one build.
	ID string `json:"id" yaml:"id"`

	// Path is the composed relative path (e.g. "posts/:postId").
	// Empty for pathless layouts and for index routes at the root.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// File is the component reference, passed through untouched.
	File string `json:"file" yaml:"file"`

	// Index marks the default child for Path.
	Index bool `json:"index" yaml:"index"`

	// ParentID is the id of the nearest enclosing descriptor, or "".
	ParentID string `json:"parentId,omitempty" yaml:"parentId,omitempty"`

	// Children holds nested descriptors in hierarchical form (BuildTree).
	// Always nil in flat form.
	Children []Descriptor `json:"children,omitempty" yaml:"children,omitempty"`
}

// Flatten converts hierarchical descriptors into flat form: depth-first,
// parent before children, with Children cleared.
func Flatten(tree []Descriptor) []Descriptor {
	var out []Descriptor
	var visit func([]Descriptor)
	visit = func(ds []Descriptor) {
		for _, d := range ds {
			children := d.Children
			d.Children = nil
			out = append(out, d)
			visit(children)
		}
	}
	visit(tree)
	return out
}

// Walk calls fn for every descriptor in hierarchical form with its depth,
// depth-first in order.
func Walk(tree []Descriptor, fn func(d Descriptor, depth int)) {
	var visit func([]Descriptor, int)
	visit = func(ds []Descriptor, depth int) {
		for _, d := range ds {
			fn(d, depth)
			visit(d.Children, depth+1)
		}
	}
	visit(tree, 0)
}
