// Package report turns an assembled taxonomy tree into the ranked abundance
// table and the serialized node lists shown to users.
package report

import (
	"math"
	"sort"

	"krakviz/internal/taxtree"
)

// Row is one line of the ranked table.
type Row struct {
	Rank    int
	Name    string
	Count   int
	Percent float64
}

// Percent is value/total*100 rounded to two decimals. A non-positive total
// yields 0.
func Percent(value, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(value)/float64(total)*10000) / 100
}

// Percentages converts every node value of t into a percentage of total,
// aligned with t.Names.
func Percentages(t *taxtree.Tree, total int) []float64 {
	out := make([]float64, len(t.Values))
	for i, v := range t.Values {
		out[i] = Percent(v, total)
	}
	return out
}

// Ranked orders the nodes of t by descending percentage of total and keeps
// the first topN rows (all rows when topN <= 0). Nodes with equal percentage
// keep their tree order.
func Ranked(t *taxtree.Tree, total, topN int) []Row {
	rows := make([]Row, len(t.Names))
	for i, name := range t.Names {
		rows[i] = Row{Name: name, Count: t.Values[i], Percent: Percent(t.Values[i], total)}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Percent > rows[j].Percent })
	if topN > 0 && topN < len(rows) {
		rows = rows[:topN]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
