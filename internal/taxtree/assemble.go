// Package taxtree rebuilds a connected taxonomy hierarchy from flat
// (taxon ID, count) observations and a lineage table.
//
// Every observed taxon becomes a node whose parent is its nearest ancestor.
// Ancestors that were not observed themselves are synthesized once, with
// value 0, so that every parent reference resolves. Branches end at an anchor
// (see AnchorSet), whose parent is the empty string.
package taxtree

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"krakviz/internal/diag"
	"krakviz/internal/kraken"
	"krakviz/internal/lineage"
)

// Diagnostic reasons reported by Assemble.
const (
	ReasonRoot      = "root-level hit removed"
	ReasonNotFound  = "not in lineage database"
	ReasonMerged    = "duplicate display name merged"
	ReasonTruncated = "truncated lineage anchored to root"
)

// Resolver looks up a taxon's lineage. *lineage.Store implements it.
// Lookup must return an error matching lineage.ErrNotFound for unknown IDs.
type Resolver interface {
	Lookup(id string) (lineage.Entry, error)
}

// TruncatedPolicy decides what happens when a lineage chain ends before
// reaching an anchor, leaving a node without a parent to point at.
type TruncatedPolicy int

const (
	// AnchorToRoot attaches the node to the super-root and records a diagnostic.
	AnchorToRoot TruncatedPolicy = iota
	// FailOnTruncated aborts assembly with a *LineageError.
	FailOnTruncated
)

func (p TruncatedPolicy) String() string {
	if p == FailOnTruncated {
		return "fail"
	}
	return "anchor"
}

// ParseTruncatedPolicy maps "anchor" / "fail".
func ParseTruncatedPolicy(s string) (TruncatedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "anchor", "root":
		return AnchorToRoot, nil
	case "fail":
		return FailOnTruncated, nil
	}
	return AnchorToRoot, fmt.Errorf("invalid truncated-lineage policy %q (want anchor | fail)", s)
}

// LineageError reports a lineage chain that ends before an anchor, under
// FailOnTruncated.
type LineageError struct {
	ID   string
	Name string
}

func (e *LineageError) Error() string {
	return fmt.Sprintf("taxon %s (%s): lineage ends without reaching an anchor", e.ID, e.Name)
}

// Options configures Assemble. The zero value uses DefaultAnchors,
// AnchorToRoot, and a silent collector.
type Options struct {
	Anchors     *AnchorSet
	Truncated   TruncatedPolicy
	Diagnostics *diag.Collector
	Logger      *zap.Logger
}

type resolvedTaxon struct {
	id    string
	name  string
	chain []string // nearest ancestor first
	count int
}

// Assemble resolves obs against r and builds the hierarchy. Observations are
// processed in the given order and the first writer of a name wins.
func Assemble(obs []kraken.Observation, r Resolver, o Options) (*Tree, error) {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dc := o.Diagnostics
	if dc == nil {
		dc = diag.NewCollector(log)
	}
	anchors := DefaultAnchors()
	if o.Anchors != nil {
		anchors = *o.Anchors
	}

	taxa, observed, skipped, err := resolve(obs, r, dc)
	if err != nil {
		return nil, err
	}
	log.Info("unique taxa found", zap.Int("taxa", len(taxa)), zap.Int("skipped", skipped))

	a := assembler{
		tree:     &Tree{Stats: Stats{Skipped: skipped}},
		placed:   make(nameSet, 2*len(taxa)),
		index:    make(map[string]int, 2*len(taxa)),
		anchors:  anchors,
		observed: observed,
		policy:   o.Truncated,
		dc:       dc,
	}
	for _, tx := range taxa {
		if err := a.place(tx); err != nil {
			return nil, err
		}
	}

	if err := a.tree.Validate(); err != nil {
		log.Error("tree assembly failed", zap.Error(err))
		return nil, err
	}
	log.Info("entries in total after adding parents",
		zap.Int("nodes", a.tree.Len()),
		zap.Int("placeholders", a.tree.Stats.Placeholders))
	return a.tree, nil
}

// resolve drops the root hit and unknown IDs, each with a diagnostic, and
// collects the display names of everything that survives.
func resolve(obs []kraken.Observation, r Resolver, dc *diag.Collector) ([]resolvedTaxon, nameSet, int, error) {
	taxa := make([]resolvedTaxon, 0, len(obs))
	names := make(nameSet, len(obs))
	skipped := 0
	for _, ob := range obs {
		if ob.TaxID == kraken.RootID {
			dc.Add(ob.TaxID, ReasonRoot, zap.Int("count", ob.Count))
			skipped++
			continue
		}
		e, err := r.Lookup(ob.TaxID)
		if errors.Is(err, lineage.ErrNotFound) {
			dc.Add(ob.TaxID, ReasonNotFound, zap.Int("count", ob.Count))
			skipped++
			continue
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("resolve taxon %s: %w", ob.TaxID, err)
		}
		taxa = append(taxa, resolvedTaxon{id: ob.TaxID, name: e.Name, chain: e.NearestFirst(), count: ob.Count})
		names.add(e.Name)
	}
	return taxa, names, skipped, nil
}

type assembler struct {
	tree     *Tree
	placed   nameSet
	index    map[string]int
	anchors  AnchorSet
	observed nameSet
	policy   TruncatedPolicy
	dc       *diag.Collector
}

func (a *assembler) emit(name, parent string, value int) {
	a.index[name] = len(a.tree.Names)
	a.tree.Names = append(a.tree.Names, name)
	a.tree.Parents = append(a.tree.Parents, parent)
	a.tree.Values = append(a.tree.Values, value)
}

func (a *assembler) place(tx resolvedTaxon) error {
	if !a.placed.add(tx.name) {
		a.tree.Values[a.index[tx.name]] += tx.count
		a.tree.Stats.Merged++
		a.dc.Add(tx.id, ReasonMerged, zap.String("name", tx.name), zap.Int("count", tx.count))
		return nil
	}
	if a.anchors.Contains(tx.name) {
		a.emit(tx.name, "", tx.count)
		a.tree.Stats.Observed++
		return nil
	}

	parent, err := a.parentAt(tx, tx.name, 0)
	if err != nil {
		return err
	}
	a.emit(tx.name, parent, tx.count)
	a.tree.Stats.Observed++

	// Materialize missing ancestors, nearest first. Observed names are
	// skipped here because their own record carries the real count.
	for j, anc := range tx.chain {
		if a.observed.has(anc) || !a.placed.add(anc) {
			continue
		}
		p := ""
		if !a.anchors.Contains(anc) {
			if p, err = a.parentAt(tx, anc, j+1); err != nil {
				return err
			}
		}
		a.emit(anc, p, 0)
		a.tree.Stats.Placeholders++
	}
	return nil
}

// parentAt returns tx.chain[i] as the parent of node, applying the
// truncated-lineage policy when the chain is too short.
func (a *assembler) parentAt(tx resolvedTaxon, node string, i int) (string, error) {
	if i < len(tx.chain) {
		return tx.chain[i], nil
	}
	if a.policy == FailOnTruncated {
		return "", &LineageError{ID: tx.id, Name: node}
	}
	a.dc.Add(tx.id, ReasonTruncated, zap.String("node", node), zap.Int("depth", i))
	return "", nil
}
