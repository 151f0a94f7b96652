package report

import (
	"fmt"
	"io"
	"strconv"

	"krakviz/pkg/api"
)

func formatPercent(p float64) string { return strconv.FormatFloat(p, 'f', 2, 64) }

// WriteRankedText writes rows as an aligned table.
func WriteRankedText(w io.Writer, rows []Row, header bool) error {
	t := table{headers: rankedColumns}
	for _, r := range rows {
		t.add(strconv.Itoa(r.Rank), r.Name, strconv.Itoa(r.Count), formatPercent(r.Percent))
	}
	_, err := io.WriteString(w, t.render(w, header))
	return err
}

// WriteSummaryText writes the human-readable form of `krakviz stats`.
func WriteSummaryText(w io.Writer, s api.SummaryV1) error {
	if _, err := fmt.Fprintf(w,
		"Source: %s\nRecords: %d\nClassified: %d\nUnclassified: %d\nPercent classified: %.1f%%\nUnique taxa: %d\n",
		s.SourceFile, s.Records, s.Classified, s.Unclassified, s.PercentClassified, s.UniqueTaxa); err != nil {
		return err
	}
	if len(s.Distribution) > 0 {
		t := table{headers: []string{"Count", "Taxa"}}
		for _, b := range s.Distribution {
			t.add(strconv.Itoa(b.Count), strconv.Itoa(b.Taxa))
		}
		if _, err := fmt.Fprintf(w, "\nCount distribution\n%s", t.render(w, true)); err != nil {
			return err
		}
	}
	if len(s.Head) > 0 {
		if _, err := fmt.Fprintf(w, "\nFirst %d rows\n", len(s.Head)); err != nil {
			return err
		}
		for _, row := range s.Head {
			if err := writeTSVLine(w, row...); err != nil {
				return err
			}
		}
	}
	return nil
}
