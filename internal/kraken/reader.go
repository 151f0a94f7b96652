// Package kraken reads per-read classifier output (Kraken 2 style) and
// reduces it to per-taxon observation counts.
package kraken

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"krakviz/internal/fileio"
)

const (
	// UnclassifiedID is the assignment of reads the classifier could not place.
	UnclassifiedID = "0"
	// RootID is the taxonomy root; hits there carry no information.
	RootID = "1"

	statusClassified   = "C"
	statusUnclassified = "U"

	colStatus = 0
	colTaxon  = 2

	headKeep = 100
)

// "Escherichia coli (taxid 562)" as written with --use-names.
var namedTaxon = regexp.MustCompile(`\(taxid (\d+)\)\s*$`)

// Observation is the number of reads assigned to one taxon.
type Observation struct {
	TaxID string
	Count int
}

// CountBin reports how many taxa were observed exactly Count times.
type CountBin struct {
	Count int
	Taxa  int
}

// Classification is the reduced content of one classifier output file.
type Classification struct {
	source       string
	records      int
	classified   int
	unclassified int
	counts       map[string]int
	head         [][]string
}

// Load reads a classifier output file ("-" for STDIN, gzip detected).
func Load(path string) (*Classification, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open classification file: %w", err)
	}
	defer rc.Close()
	return read(rc, path)
}

// Read parses tab-delimited classifier rows from r.
func Read(r io.Reader) (*Classification, error) { return read(r, "<input>") }

func read(r io.Reader, source string) (*Classification, error) {
	c := &Classification{source: source, counts: make(map[string]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	ln := 0
	for sc.Scan() {
		ln++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) <= colTaxon {
			return nil, fmt.Errorf("%s:%d bad field count (%d, want at least %d)", source, ln, len(f), colTaxon+1)
		}
		c.records++
		if len(c.head) < headKeep {
			c.head = append(c.head, f)
		}
		switch strings.TrimSpace(f[colStatus]) {
		case statusClassified:
			c.classified++
		case statusUnclassified:
			c.unclassified++
		}
		id := normalizeTaxID(f[colTaxon])
		if id == UnclassifiedID {
			continue
		}
		c.counts[id]++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return c, nil
}

func normalizeTaxID(s string) string {
	s = strings.TrimSpace(s)
	if m := namedTaxon.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// Source is the path the classification was read from.
func (c *Classification) Source() string { return c.source }

// Records is the number of non-blank rows read.
func (c *Classification) Records() int { return c.records }

// Classified and Unclassified count rows by status flag.
func (c *Classification) Classified() int   { return c.classified }
func (c *Classification) Unclassified() int { return c.unclassified }

// Counts returns one Observation per assigned taxon (the unclassified
// sentinel excluded), ordered by taxon ID in string order.
func (c *Classification) Counts() []Observation {
	ids := make([]string, 0, len(c.counts))
	for id := range c.counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Observation, len(ids))
	for i, id := range ids {
		out[i] = Observation{TaxID: id, Count: c.counts[id]}
	}
	return out
}

// Filter keeps observations whose count is strictly greater than threshold,
// preserving the order of Counts.
func (c *Classification) Filter(threshold int) []Observation {
	return FilterObservations(c.Counts(), threshold)
}

// FilterObservations keeps obs with Count > threshold, order preserved.
func FilterObservations(obs []Observation, threshold int) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Count > threshold {
			out = append(out, o)
		}
	}
	return out
}

// UniqueIDs is the number of distinct assigned taxa.
func (c *Classification) UniqueIDs() int { return len(c.counts) }

// TotalClassified is the sum of all per-taxon counts. Percentages in reports
// are relative to this total, independent of any filter threshold.
func (c *Classification) TotalClassified() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// PercentClassified is C/(C+U)*100 rounded to one decimal; 0 when the file
// held no C/U rows.
func (c *Classification) PercentClassified() float64 {
	den := c.classified + c.unclassified
	if den == 0 {
		return 0
	}
	return math.Round(float64(c.classified)/float64(den)*1000) / 10
}

// CountDistribution bins taxa by their count, ascending by count. It helps
// choose a filter threshold.
func (c *Classification) CountDistribution() []CountBin {
	bins := make(map[int]int)
	for _, n := range c.counts {
		bins[n]++
	}
	out := make([]CountBin, 0, len(bins))
	for n, taxa := range bins {
		out = append(out, CountBin{Count: n, Taxa: taxa})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out
}

// Head returns up to n of the first raw rows (split on tabs).
func (c *Classification) Head(n int) [][]string {
	if n > len(c.head) {
		n = len(c.head)
	}
	if n < 0 {
		n = 0
	}
	return c.head[:n]
}
