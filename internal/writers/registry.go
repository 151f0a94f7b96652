// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"krakviz/internal/report"
	"krakviz/internal/taxtree"
	"krakviz/pkg/api"
)

// RankedPayload is what `krakviz list` hands to a ranked writer.
type RankedPayload struct {
	Rows   []report.Row
	Header bool
}

// TreePayload is what `krakviz tree` hands to a tree writer.
type TreePayload struct {
	Tree   *taxtree.Tree
	Header bool
}

// Writer registries (format → handler). Registered in init() blocks below.
var (
	RankedWriters  = map[string]func(w io.Writer, p RankedPayload) error{}
	TreeWriters    = map[string]func(w io.Writer, p TreePayload) error{}
	SummaryWriters = map[string]func(w io.Writer, s api.SummaryV1) error{}
)

// Register helpers (idempotent last-wins)
func RegisterRanked(format string, fn func(io.Writer, RankedPayload) error) { RankedWriters[format] = fn }
func RegisterTree(format string, fn func(io.Writer, TreePayload) error)     { TreeWriters[format] = fn }
func RegisterSummary(format string, fn func(io.Writer, api.SummaryV1) error) {
	SummaryWriters[format] = fn
}

// Dispatch helpers used by the app commands.
func WriteRanked(format string, w io.Writer, p RankedPayload) error {
	fn, ok := RankedWriters[format]
	if !ok {
		return fmt.Errorf("unknown ranked format %q (no writer registered)", format)
	}
	return fn(w, p)
}

func WriteTree(format string, w io.Writer, p TreePayload) error {
	fn, ok := TreeWriters[format]
	if !ok {
		return fmt.Errorf("unknown tree format %q (no writer registered)", format)
	}
	return fn(w, p)
}

func WriteSummary(format string, w io.Writer, s api.SummaryV1) error {
	fn, ok := SummaryWriters[format]
	if !ok {
		return fmt.Errorf("unknown summary format %q (no writer registered)", format)
	}
	return fn(w, s)
}

// Formats lists the registered format names of one registry, sorted.
func Formats[V any](registry map[string]V) []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterRanked("text", func(w io.Writer, p RankedPayload) error { return report.WriteRankedText(w, p.Rows, p.Header) })
	RegisterRanked("tsv", func(w io.Writer, p RankedPayload) error { return report.WriteRankedTSV(w, p.Rows, p.Header) })
	RegisterRanked("json", func(w io.Writer, p RankedPayload) error { return report.WriteRankedJSON(w, p.Rows) })

	RegisterTree("tsv", func(w io.Writer, p TreePayload) error { return report.WriteTreeTSV(w, p.Tree, p.Header) })
	RegisterTree("json", func(w io.Writer, p TreePayload) error { return report.WriteTreeJSON(w, p.Tree) })
	RegisterTree("jsonl", func(w io.Writer, p TreePayload) error { return report.WriteTreeJSONL(w, p.Tree, IsBrokenPipe) })

	RegisterSummary("text", report.WriteSummaryText)
	RegisterSummary("json", report.WriteSummaryJSON)
}
