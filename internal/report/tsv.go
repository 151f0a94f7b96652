package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"krakviz/internal/taxtree"
)

func writeTSVLine(w io.Writer, cells ...string) error {
	_, err := io.WriteString(w, strings.Join(cells, "\t")+"\n")
	return err
}

// WriteRankedTSV writes rows as tab-separated values.
func WriteRankedTSV(w io.Writer, rows []Row, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if err := writeTSVLine(bw, RankedTSVHeader); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := writeTSVLine(bw, strconv.Itoa(r.Rank), r.Name, strconv.Itoa(r.Count), formatPercent(r.Percent)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTreeTSV writes the name/parent/value triples of t in tree order.
// Anchor nodes have an empty parent column.
func WriteTreeTSV(w io.Writer, t *taxtree.Tree, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if err := writeTSVLine(bw, TreeTSVHeader); err != nil {
			return err
		}
	}
	for i, name := range t.Names {
		if err := writeTSVLine(bw, name, t.Parents[i], strconv.Itoa(t.Values[i])); err != nil {
			return err
		}
	}
	return bw.Flush()
}
