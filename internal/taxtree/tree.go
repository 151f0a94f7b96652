// internal/taxtree/tree.go
package taxtree

import "fmt"

// Node is one (name, parent, value) record. Parent "" marks an anchor.
type Node struct {
	Name   string
	Parent string
	Value  int
}

// Stats summarizes how a Tree was built.
type Stats struct {
	Observed     int // nodes carrying an observed count
	Placeholders int // zero-value ancestors synthesized by the walk
	Merged       int // observations folded into an earlier node of the same name
	Skipped      int // observations dropped during resolution
}

// Tree is the assembled hierarchy as three aligned columns, the input shape
// of sunburst/icicle renderers.
type Tree struct {
	Names   []string
	Parents []string
	Values  []int
	Stats   Stats
}

// Len is the number of nodes.
func (t *Tree) Len() int { return len(t.Names) }

// Nodes returns the tree as records. It panics if the columns diverge;
// call Validate first on trees not produced by Assemble.
func (t *Tree) Nodes() []Node {
	out := make([]Node, len(t.Names))
	for i := range t.Names {
		out[i] = Node{Name: t.Names[i], Parent: t.Parents[i], Value: t.Values[i]}
	}
	return out
}

// Validate checks the renderer contract: aligned columns, unique names, and
// every non-empty parent present as a name.
func (t *Tree) Validate() error {
	if len(t.Names) != len(t.Parents) || len(t.Names) != len(t.Values) {
		return &AssemblyError{
			Reason: fmt.Sprintf("column lengths differ: names=%d parents=%d values=%d",
				len(t.Names), len(t.Parents), len(t.Values)),
		}
	}
	seen := make(nameSet, len(t.Names))
	for _, n := range t.Names {
		if !seen.add(n) {
			return &AssemblyError{Reason: "duplicate node", Name: n}
		}
	}
	for i, p := range t.Parents {
		if p != "" && !seen.has(p) {
			return &AssemblyError{Reason: fmt.Sprintf("dangling parent %q", p), Name: t.Names[i]}
		}
	}
	return nil
}

// AssemblyError means the assembled columns break the renderer contract.
// It is fatal to the analysis that produced it.
type AssemblyError struct {
	Reason string
	Name   string
}

func (e *AssemblyError) Error() string {
	if e.Name == "" {
		return "tree assembly invariant violated: " + e.Reason
	}
	return fmt.Sprintf("tree assembly invariant violated: %s (node %q)", e.Reason, e.Name)
}

// nameSet is the membership set behind the first-writer-wins rule: add
// inserts name only if absent and reports whether it did. A false result
// means an earlier writer owns the name and the caller must not emit it.
type nameSet map[string]struct{}

func (s nameSet) add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}
