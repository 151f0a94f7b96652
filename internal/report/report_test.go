package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krakviz/internal/taxtree"
	"krakviz/pkg/api"
)

func sampleTree() *taxtree.Tree {
	return &taxtree.Tree{
		Names:   []string{"Escherichia coli", "Escherichia", "cellular organisms", "Shigella", "Viruses"},
		Parents: []string{"Escherichia", "cellular organisms", "", "cellular organisms", ""},
		Values:  []int{30, 0, 0, 60, 10},
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(5, 5))
	assert.Equal(t, 0.0, Percent(5, 0))
}

func TestRanked(t *testing.T) {
	rows := Ranked(sampleTree(), 100, 0)
	want := []Row{
		{Rank: 1, Name: "Shigella", Count: 60, Percent: 60},
		{Rank: 2, Name: "Escherichia coli", Count: 30, Percent: 30},
		{Rank: 3, Name: "Viruses", Count: 10, Percent: 10},
		{Rank: 4, Name: "Escherichia", Count: 0, Percent: 0},
		{Rank: 5, Name: "cellular organisms", Count: 0, Percent: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("ranked mismatch (-want +got):\n%s", diff)
	}
}

func TestRankedTopN(t *testing.T) {
	rows := Ranked(sampleTree(), 100, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shigella", rows[0].Name)
	assert.Equal(t, "Escherichia coli", rows[1].Name)

	assert.Len(t, Ranked(sampleTree(), 100, 50), 5)
	assert.Empty(t, Ranked(&taxtree.Tree{}, 100, 3))
}

func TestPercentages(t *testing.T) {
	assert.Equal(t, []float64{15, 0, 0, 30, 5}, Percentages(sampleTree(), 200))
}

func TestWriteRankedTSV(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteRankedTSV(&b, Ranked(sampleTree(), 100, 2), true))
	want := RankedTSVHeader + "\n" +
		"1\tShigella\t60\t60.00\n" +
		"2\tEscherichia coli\t30\t30.00\n"
	assert.Equal(t, want, b.String())
}

func TestWriteTreeTSV(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteTreeTSV(&b, sampleTree(), false))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Escherichia coli\tEscherichia\t30", lines[0])
	assert.Equal(t, "cellular organisms\t\t0", lines[2])
}

func TestWriteRankedText(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteRankedText(&b, Ranked(sampleTree(), 100, 3), true))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 5) // header, divider, 3 rows
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Percent")
	assert.Contains(t, lines[2], "Shigella")
	assert.Contains(t, lines[2], "60.00")
	assert.Contains(t, lines[4], "Viruses")

	b.Reset()
	require.NoError(t, WriteRankedText(&b, Ranked(sampleTree(), 100, 3), false))
	assert.NotContains(t, b.String(), "Percent")
	assert.Len(t, strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n"), 3)
}

func TestWriteTreeJSON(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteTreeJSON(&b, sampleTree()))
	var got []api.NodeV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, api.NodeV1{Name: "Viruses", Parent: "", Value: 10}, got[4])
}

func TestWriteTreeJSONL(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteTreeJSONL(&b, sampleTree(), nil))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	var first api.NodeV1
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, api.NodeV1{Name: "Escherichia coli", Parent: "Escherichia", Value: 30}, first)
}

func TestWriteRankedJSONKeepsAngleBrackets(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteRankedJSON(&b, []Row{{Rank: 1, Name: "<unnamed>", Count: 1, Percent: 100}}))
	assert.Contains(t, b.String(), `"name": "<unnamed>"`)
}
