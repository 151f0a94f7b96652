package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krakviz/internal/kraken"
	"krakviz/pkg/api"
)

const classified = "C\tr1\t562\t150\t562:116\n" +
	"C\tr2\t562\t150\t562:116\n" +
	"C\tr3\t2\t150\t2:116\n" +
	"U\tr4\t0\t150\t0:116\n"

func TestSummarize(t *testing.T) {
	c, err := kraken.Read(strings.NewReader(classified))
	require.NoError(t, err)

	s := Summarize(c, 2)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 3, s.Classified)
	assert.Equal(t, 1, s.Unclassified)
	assert.Equal(t, 75.0, s.PercentClassified)
	assert.Equal(t, 2, s.UniqueTaxa)
	assert.Equal(t, []api.CountBinV1{{Count: 1, Taxa: 1}, {Count: 2, Taxa: 1}}, s.Distribution)
	require.Len(t, s.Head, 2)
	assert.Equal(t, "r1", s.Head[0][1])

	assert.Nil(t, Summarize(c, 0).Head)
}

func TestWriteSummaryText(t *testing.T) {
	c, err := kraken.Read(strings.NewReader(classified))
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, WriteSummaryText(&b, Summarize(c, 1)))
	out := b.String()
	assert.Contains(t, out, "Percent classified: 75.0%")
	assert.Contains(t, out, "Unique taxa: 2")
	assert.Contains(t, out, "Count distribution")
	assert.Contains(t, out, "C\tr1\t562\t150\t562:116\n")
}
