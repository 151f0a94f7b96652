// internal/taxtree/anchors.go
package taxtree

// DefaultAnchorNames are NCBI's top-level groupings directly under the root.
var DefaultAnchorNames = []string{
	"cellular organisms",
	"Viruses",
	"other entries",
	"unclassified entries",
}

// AnchorSet is the fixed set of names always attached to the implicit
// empty-string super-root.
type AnchorSet struct {
	names map[string]struct{}
	order []string
}

// NewAnchorSet builds an AnchorSet; blank and repeated names are ignored.
func NewAnchorSet(names ...string) AnchorSet {
	a := AnchorSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := a.names[n]; ok {
			continue
		}
		a.names[n] = struct{}{}
		a.order = append(a.order, n)
	}
	return a
}

// DefaultAnchors returns the set built from DefaultAnchorNames.
func DefaultAnchors() AnchorSet { return NewAnchorSet(DefaultAnchorNames...) }

// Contains reports whether name is an anchor.
func (a AnchorSet) Contains(name string) bool {
	_, ok := a.names[name]
	return ok
}

// Names lists the anchors in the order given.
func (a AnchorSet) Names() []string { return append([]string(nil), a.order...) }

// Len is the number of anchors.
func (a AnchorSet) Len() int { return len(a.order) }
