package lineage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = "1\t|\troot\t|\t\t|\n" +
	"131567\t|\tcellular organisms\t|\t\t|\n" +
	"2\t|\tBacteria\t|\tcellular organisms; \t|\n" +
	"1224\t|\tPseudomonadota\t|\tcellular organisms; Bacteria; \t|\n" +
	"562\t|\tEscherichia coli\t|\tcellular organisms; Bacteria; Pseudomonadota; Gammaproteobacteria; Enterobacterales; Enterobacteriaceae; Escherichia; \t|\n"

func TestParseDump(t *testing.T) {
	s, err := ParseDump(strings.NewReader(sampleDump), PolicySkip, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	root, err := s.Lookup("1")
	require.NoError(t, err)
	assert.Equal(t, "root", root.Name)
	assert.Empty(t, root.Lineage)

	bac, err := s.Lookup("2")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"cellular organisms"}, bac.Lineage); diff != "" {
		t.Fatalf("lineage mismatch (-want +got):\n%s", diff)
	}

	eco, err := s.Lookup("562")
	require.NoError(t, err)
	assert.Equal(t, "Escherichia", eco.NearestFirst()[0])
	assert.Equal(t, "cellular organisms", eco.NearestFirst()[len(eco.Lineage)-1])
	// NearestFirst must not reorder the stored chain
	assert.Equal(t, "cellular organisms", eco.Lineage[0])
}

func TestParseDumpCRLF(t *testing.T) {
	s, err := ParseDump(strings.NewReader("2\t|\tBacteria\t|\tcellular organisms; \t|\r\n"), PolicySkip, nil)
	require.NoError(t, err)
	e, err := s.Lookup("2")
	require.NoError(t, err)
	assert.Equal(t, []string{"cellular organisms"}, e.Lineage)
}

func TestParseDumpDropsInvalidUTF8(t *testing.T) {
	line := "9\t|\tBad\xffName\t|\tcellular organisms; \t|\n"
	s, err := ParseDump(strings.NewReader(line), PolicyFailFast, nil)
	require.NoError(t, err)
	e, err := s.Lookup("9")
	require.NoError(t, err)
	assert.Equal(t, "BadName", e.Name)
}

func TestParseDumpSkipPolicy(t *testing.T) {
	in := sampleDump + "garbage line\n\n" + "\t|\tnameless\t|\t\t|\n"
	var skipped []int
	s, err := ParseDump(strings.NewReader(in), PolicySkip, func(line int, reason string) {
		skipped = append(skipped, line)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	// blank line 7 is ignored silently
	assert.Equal(t, []int{6, 8}, skipped)
}

func TestParseDumpFailFast(t *testing.T) {
	in := sampleDump + "garbage line\n"
	_, err := ParseDump(strings.NewReader(in), PolicyFailFast, nil)
	var mErr *MalformedLineError
	require.True(t, errors.As(err, &mErr), "want *MalformedLineError, got %v", err)
	assert.Equal(t, 6, mErr.Line)
}

func TestParseDumpLastDuplicateWins(t *testing.T) {
	in := "5\t|\tOld\t|\t\t|\n5\t|\tNew\t|\tcellular organisms; \t|\n"
	s, err := ParseDump(strings.NewReader(in), PolicySkip, nil)
	require.NoError(t, err)
	e, _ := s.Lookup("5")
	assert.Equal(t, "New", e.Name)
}

func TestLookupNotFound(t *testing.T) {
	s := NewStore(map[string]Entry{"2": {Name: "Bacteria"}}, "")
	_, err := s.Lookup("42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "42", nf.ID)
}

func TestLoadDumpMissingFile(t *testing.T) {
	_, err := LoadDump(filepath.Join(t.TempDir(), DumpFile), PolicySkip, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseDecodePolicy(t *testing.T) {
	for in, want := range map[string]DecodePolicy{"": PolicySkip, "skip": PolicySkip, "FAIL": PolicyFailFast, "fail-fast": PolicyFailFast} {
		got, err := ParseDecodePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDecodePolicy("ignore")
	assert.Error(t, err)
}
