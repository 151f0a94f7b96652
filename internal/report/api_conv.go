package report

import (
	"krakviz/internal/kraken"
	"krakviz/internal/taxtree"
	"krakviz/pkg/api"
)

// ToAPIRanked converts ranked rows to the stable wire schema (v1).
func ToAPIRanked(rows []Row) []api.RankedRowV1 {
	out := make([]api.RankedRowV1, 0, len(rows))
	for _, r := range rows {
		out = append(out, api.RankedRowV1{Rank: r.Rank, Name: r.Name, Count: r.Count, Percent: r.Percent})
	}
	return out
}

// ToAPINode converts one node.
func ToAPINode(n taxtree.Node) api.NodeV1 {
	return api.NodeV1{Name: n.Name, Parent: n.Parent, Value: n.Value}
}

// ToAPINodes converts every node of t, in tree order.
func ToAPINodes(t *taxtree.Tree) []api.NodeV1 {
	nodes := t.Nodes()
	out := make([]api.NodeV1, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ToAPINode(n))
	}
	return out
}

// Summarize collects the file-level statistics of c. head limits the number
// of raw rows carried along (0 = none).
func Summarize(c *kraken.Classification, head int) api.SummaryV1 {
	s := api.SummaryV1{
		SourceFile:        c.Source(),
		Records:           c.Records(),
		Classified:        c.Classified(),
		Unclassified:      c.Unclassified(),
		PercentClassified: c.PercentClassified(),
		UniqueTaxa:        c.UniqueIDs(),
	}
	for _, b := range c.CountDistribution() {
		s.Distribution = append(s.Distribution, api.CountBinV1{Count: b.Count, Taxa: b.Taxa})
	}
	if head > 0 {
		s.Head = c.Head(head)
	}
	return s
}
