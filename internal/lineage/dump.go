// internal/lineage/dump.go
package lineage

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"krakviz/internal/fileio"
)

// DumpFile is the member of NCBI's new_taxdump archive the store is built from.
const DumpFile = "fullnamelineage.dmp"

const (
	fieldSep   = "\t|\t"
	recordEnd  = "\t|"
	lineageSep = "; "
)

// DecodePolicy controls what happens to a dump line that cannot be parsed.
type DecodePolicy int

const (
	// PolicySkip drops the line and reports it through the skip callback.
	PolicySkip DecodePolicy = iota
	// PolicyFailFast aborts the load with a *MalformedLineError.
	PolicyFailFast
)

func (p DecodePolicy) String() string {
	if p == PolicyFailFast {
		return "fail"
	}
	return "skip"
}

// ParseDecodePolicy maps "skip" / "fail" (as used in flags and config).
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "fail", "fail-fast":
		return PolicyFailFast, nil
	}
	return PolicySkip, fmt.Errorf("invalid decode policy %q (want skip | fail)", s)
}

// MalformedLineError is returned under PolicyFailFast.
type MalformedLineError struct {
	Source string
	Line   int
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d %s", e.Source, e.Line, e.Reason)
}

// SkipFunc receives every line dropped under PolicySkip.
type SkipFunc func(line int, reason string)

// LoadDump builds a Store from a fullnamelineage.dmp file (plain or gzip).
func LoadDump(path string, policy DecodePolicy, onSkip SkipFunc) (*Store, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lineage dump: %w", err)
	}
	defer rc.Close()
	s, err := parseDump(rc, path, policy, onSkip)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseDump builds a Store from dump-formatted text. Invalid UTF-8 bytes are
// dropped from each line before it is split. A repeated ID replaces the
// earlier entry.
func ParseDump(r io.Reader, policy DecodePolicy, onSkip SkipFunc) (*Store, error) {
	return parseDump(r, "", policy, onSkip)
}

func parseDump(r io.Reader, source string, policy DecodePolicy, onSkip SkipFunc) (*Store, error) {
	entries := make(map[string]Entry, 1<<16)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.ToValidUTF8(sc.Text(), "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, e, reason := parseLine(line)
		if reason != "" {
			if policy == PolicyFailFast {
				return nil, &MalformedLineError{Source: sourceName(source), Line: ln, Reason: reason}
			}
			if onSkip != nil {
				onSkip(ln, reason)
			}
			continue
		}
		entries[id] = e
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lineage dump: %w", err)
	}
	return &Store{entries: entries, source: source}, nil
}

// parseLine splits `ID\t|\tname\t|\ta; b; c; \t|`. A non-empty reason marks
// the line as malformed.
func parseLine(line string) (string, Entry, string) {
	f := strings.Split(line, fieldSep)
	if len(f) < 3 {
		return "", Entry{}, fmt.Sprintf("bad field count (%d)", len(f))
	}
	id := strings.TrimSpace(f[0])
	if id == "" {
		return "", Entry{}, "empty taxon id"
	}
	raw := strings.TrimSuffix(strings.TrimRight(f[2], "\r\n"), recordEnd)
	var chain []string
	if raw != "" {
		chain = strings.Split(raw, lineageSep)
		// the lineage string ends with a separator; drop the empty tail
		if chain[len(chain)-1] == "" {
			chain = chain[:len(chain)-1]
		}
	}
	return id, Entry{Name: f[1], Lineage: chain}, ""
}

func sourceName(s string) string {
	if s == "" {
		return "<input>"
	}
	return s
}
