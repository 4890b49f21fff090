// Package manifest parses route manifests into route declarations.
//
// A manifest is YAML (JSON is accepted as well, being a subset):
//
//	routes:
//	  - layout: routes/root.tsx
//	    children:
//	      - index: routes/home.tsx
//	      - route: about
//	        file: routes/about.tsx
//	      - prefix: api
//	        children:
//	          - route: users
//	            file: routes/api/users.ts
//	            id: users
//
// Each entry has exactly one of route, index, layout or prefix. Every
// declaration carries "manifest:line" as its source so builder errors point
// back into the file.
package manifest

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

const (
	keyRoute    = "route"
	keyIndex    = "index"
	keyLayout   = "layout"
	keyPrefix   = "prefix"
	keyFile     = "file"
	keyPath     = "path"
	keyID       = "id"
	keyChildren = "children"
)

var kindKeys = []string{keyRoute, keyIndex, keyLayout, keyPrefix}

var knownKeys = map[string]bool{
	keyRoute: true, keyIndex: true, keyLayout: true, keyPrefix: true,
	keyFile: true, keyPath: true, keyID: true, keyChildren: true,
}

// invalidFor lists keys an entry kind rejects. The kind key already names
// the component file for index and layout entries.
var invalidFor = map[string][]string{
	keyIndex:  {keyFile},
	keyLayout: {keyFile},
	keyPrefix: {keyFile, keyPath, keyID},
}

// Errors is every problem found in one manifest.
type Errors []*errors.Error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.FormatCompact()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap returns the individual errors.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// Parse decodes a manifest. name labels the declarations' sources and error
// locations; it is usually the manifest path.
//
// Parse reports structural problems (unknown keys, missing or repeated kind
// keys) as an Errors value. Route conflicts are left to the builder.
func Parse(name string, data []byte) ([]routetree.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("M001").
			WithDetail(name + ": " + err.Error()).
			Wrap(err)
	}

	p := &parser{name: name}
	list := p.routes(&doc)
	var nodes []routetree.Node
	if list != nil {
		nodes = p.entries(list)
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return nodes, nil
}

// Codes returns the error codes carried by a Parse error, in order.
func Codes(err error) []string {
	var list Errors
	if stderrors.As(err, &list) {
		codes := make([]string, len(list))
		for i, e := range list {
			codes[i] = e.Code
		}
		return codes
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return []string{e.Code}
	}
	return nil
}

type parser struct {
	name string
	errs Errors
}

func (p *parser) fail(code string, at *yaml.Node, detail string) {
	e := errors.New(code).WithDetail(detail)
	if at != nil && at.Line > 0 {
		e.WithLocation(p.name, at.Line, at.Column)
	}
	p.errs = append(p.errs, e)
}

func (p *parser) source(n *yaml.Node) string {
	return fmt.Sprintf("%s:%d", p.name, n.Line)
}

// routes locates the route list: either the top-level sequence or the value
// of the top-level routes key.
func (p *parser) routes(doc *yaml.Node) *yaml.Node {
	root := doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}

	var list *yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		list = root
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			k, v := root.Content[i], root.Content[i+1]
			if k.Value != "routes" {
				p.fail("M002", k, fmt.Sprintf("unknown top-level key %q", k.Value))
				continue
			}
			if v.Kind != yaml.SequenceNode {
				p.fail("M001", v, "routes must be a list")
				return nil
			}
			list = v
		}
	case 0:
		// empty document
	default:
		p.fail("M001", root, "manifest must be a mapping with a routes list")
		return nil
	}

	if list == nil || len(list.Content) == 0 {
		p.fail("M006", list, p.name+" declares no routes")
		return nil
	}
	return list
}

func (p *parser) entries(list *yaml.Node) []routetree.Node {
	var out []routetree.Node
	for _, item := range list.Content {
		if n, ok := p.entry(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// entry converts one mapping into a declaration. It reports false when the
// entry is too malformed to declare.
func (p *parser) entry(n *yaml.Node) (routetree.Node, bool) {
	if n.Kind != yaml.MappingNode {
		p.fail("M001", n, "route entry must be a mapping")
		return routetree.Node{}, false
	}

	values := make(map[string]*yaml.Node)
	keys := make(map[string]*yaml.Node)
	var kinds []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch {
		case !knownKeys[k.Value]:
			p.fail("M002", k, fmt.Sprintf("unknown key %q", k.Value))
			continue
		case keys[k.Value] != nil:
			p.fail("M001", k, fmt.Sprintf("key %q is repeated", k.Value))
			continue
		}
		keys[k.Value] = k
		values[k.Value] = v
		if slices.Contains(kindKeys, k.Value) {
			kinds = append(kinds, k.Value)
		}
	}

	switch len(kinds) {
	case 0:
		p.fail("M003", n, "entry has none of route, index, layout or prefix")
		return routetree.Node{}, false
	case 1:
	default:
		p.fail("M004", n, "entry declares "+strings.Join(kinds, " and "))
		return routetree.Node{}, false
	}

	kind := kinds[0]
	valid := true
	for _, key := range invalidFor[kind] {
		if k := keys[key]; k != nil {
			p.fail("M005", k, fmt.Sprintf("%s entries do not take %q", kind, key))
			valid = false
		}
	}

	var children []routetree.Node
	if v := values[keyChildren]; v != nil {
		if v.Kind != yaml.SequenceNode {
			p.fail("M001", v, "children must be a list")
			valid = false
		} else {
			children = p.entries(v)
		}
	}
	if !valid {
		return routetree.Node{}, false
	}

	value := p.scalar(values[kind])
	if kind == keyPrefix {
		return routetree.Prefix(value, children...), true
	}

	opts := []routetree.Option{routetree.WithSource(p.source(n))}
	if id := p.scalar(values[keyID]); id != "" {
		opts = append(opts, routetree.WithID(id))
	}
	if v := values[keyPath]; v != nil {
		opts = append(opts, routetree.WithPath(p.scalar(v)))
	}

	var node routetree.Node
	switch kind {
	case keyRoute:
		node = routetree.Route(value, p.scalar(values[keyFile]), opts...)
	case keyIndex:
		node = routetree.Index(value, opts...)
	case keyLayout:
		node = routetree.Layout(value, opts...)
	}
	if values[keyChildren] != nil {
		node = node.Children(children...)
	}
	return node, true
}

// scalar returns a string value. Null and missing values are "".
func (p *parser) scalar(v *yaml.Node) string {
	if v == nil {
		return ""
	}
	if v.Kind != yaml.ScalarNode {
		p.fail("M001", v, "expected a string")
		return ""
	}
	if v.Tag == "!!null" {
		return ""
	}
	return v.Value
}
