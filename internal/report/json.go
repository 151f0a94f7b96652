package report

import (
	"encoding/json"
	"io"

	"krakviz/internal/jsonlutil"
	"krakviz/internal/jsonutil"
	"krakviz/internal/taxtree"
	"krakviz/pkg/api"
)

// WriteRankedJSON writes rows as a JSON array of api.RankedRowV1.
func WriteRankedJSON(w io.Writer, rows []Row) error {
	return jsonutil.EncodePretty(w, ToAPIRanked(rows))
}

// WriteTreeJSON writes t as a JSON array of api.NodeV1.
func WriteTreeJSON(w io.Writer, t *taxtree.Tree) error {
	return jsonutil.EncodePretty(w, ToAPINodes(t))
}

// WriteTreeJSONL writes one api.NodeV1 object per line.
func WriteTreeJSONL(w io.Writer, t *taxtree.Tree, isBroken func(error) bool) error {
	return jsonlutil.Write(w, t.Nodes(), func(enc *json.Encoder, n taxtree.Node) error {
		return enc.Encode(ToAPINode(n))
	}, isBroken)
}

// WriteSummaryJSON writes s as indented JSON.
func WriteSummaryJSON(w io.Writer, s api.SummaryV1) error {
	return jsonutil.EncodePretty(w, s)
}
