package routetree

import (
	"strconv"

	"github.com/vango-dev/rrbuilder/pkg/routepath"
)

const (
	rootID       = "root"
	indexSuffix  = "index"
	layoutSuffix = "layout"
	ordinalSep   = "~"
)

// idAllocator hands out derived ids that never collide with explicit ids or
// with each other.
type idAllocator struct {
	taken map[string]bool
}

func newIDAllocator(explicit map[string]bool) *idAllocator {
	taken := make(map[string]bool, len(explicit))
	for id := range explicit {
		taken[id] = true
	}
	return &idAllocator{taken: taken}
}

// derive returns the first free id for base: base, base~2, base~3, ...
func (a *idAllocator) derive(base string) string {
	id := base
	for n := 2; a.taken[id]; n++ {
		id = base + ordinalSep + strconv.Itoa(n)
	}
	a.taken[id] = true
	return id
}

// derivedBase returns the id base for a node of the given kind at path.
// For index and layout nodes path is the composed path of the node itself
// (the parent path for an index).
func derivedBase(kind Kind, path string) string {
	switch kind {
	case KindIndex:
		return routepath.Join(path, indexSuffix)
	case KindLayout:
		return routepath.Join(path, layoutSuffix)
	default:
		if path == "" {
			return rootID
		}
		return path
	}
}
