// pkg/api/taxa_v1.go
package api

// NodeV1 is the stable JSON/JSONL schema for one assembled hierarchy node.
// Parent is "" for anchor nodes. Keep fields, names, and types stable.
type NodeV1 struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
	Value  int    `json:"value"`
}

// RankedRowV1 is one row of the ranked abundance table.
type RankedRowV1 struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CountBinV1 reports how many taxa were observed exactly Count times.
type CountBinV1 struct {
	Count int `json:"count"`
	Taxa  int `json:"taxa"`
}

// SummaryV1 is the schema emitted by `krakviz stats --output json`.
// Add new fields only with ",omitempty".
type SummaryV1 struct {
	SourceFile        string       `json:"source_file"`
	Records           int          `json:"records"`
	Classified        int          `json:"classified"`
	Unclassified      int          `json:"unclassified"`
	PercentClassified float64      `json:"percent_classified"`
	UniqueTaxa        int          `json:"unique_taxa"`
	Distribution      []CountBinV1 `json:"count_distribution,omitempty"`
	Head              [][]string   `json:"head,omitempty"`
}
