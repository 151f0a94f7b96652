package chart

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krakviz/internal/taxtree"
)

func sampleTree() *taxtree.Tree {
	return &taxtree.Tree{
		Names:   []string{"Escherichia coli", "Bacteria", "cellular organisms"},
		Parents: []string{"Bacteria", "cellular organisms", ""},
		Values:  []int{3, 1, 0},
	}
}

// traces decodes the first argument passed to Plotly.newPlot.
func traces(t *testing.T, html string) []map[string]any {
	t.Helper()
	const marker = `Plotly.newPlot("chart",`
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0, "no newPlot call in page")
	var out []map[string]any
	require.NoError(t, json.NewDecoder(strings.NewReader(html[i+len(marker):])).Decode(&out))
	return out
}

func TestFromTree(t *testing.T) {
	d := FromTree(sampleTree(), 8)
	assert.Equal(t, []string{"Escherichia coli", "Bacteria", "cellular organisms"}, d.Labels)
	assert.Equal(t, []float64{37.5, 12.5, 0}, d.Values)
	assert.Equal(t, []int{3, 1, 0}, d.Counts)
}

func TestRenderSunburstDefaults(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Render(&b, Sunburst, FromTree(sampleTree(), 4), Options{ColorByValue: true}))
	page := b.String()

	assert.Contains(t, page, "<title>Sunburst chart</title>")
	assert.Contains(t, page, DefaultPlotlyURL)
	assert.Contains(t, page, `"width":1100`)
	assert.Contains(t, page, `"height":700`)
	assert.NotContains(t, page, `"margin"`)

	tr := traces(t, page)
	require.Len(t, tr, 1)
	assert.Equal(t, "sunburst", tr[0]["type"])
	assert.Equal(t, []any{"Bacteria", "cellular organisms", ""}, tr[0]["parents"])
	assert.Equal(t, []any{75.0, 25.0, 0.0}, tr[0]["values"])
	require.Contains(t, tr[0], "marker")
}

func TestRenderIcicle(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Render(&b, Icicle, FromTree(sampleTree(), 4), Options{Title: "My run", Height: 1200}))
	page := b.String()

	assert.Contains(t, page, "<title>My run</title>")
	assert.Contains(t, page, `"width":900`)
	assert.Contains(t, page, `"height":1200`)
	assert.Contains(t, page, `"margin":{"b":25,"l":25,"r":25,"t":50}`)

	tr := traces(t, page)
	assert.Equal(t, "icicle", tr[0]["type"])
	assert.Equal(t, map[string]any{"color": "lightgrey"}, tr[0]["root"])
	assert.NotContains(t, tr[0], "marker", "no colour scale unless requested")
}

func TestRenderEscapesNames(t *testing.T) {
	tr := &taxtree.Tree{Names: []string{"</script><b>x"}, Parents: []string{""}, Values: []int{1}}
	var b bytes.Buffer
	require.NoError(t, Render(&b, Sunburst, FromTree(tr, 1), Options{Title: "<i>t</i>"}))
	page := b.String()
	assert.Equal(t, 1, strings.Count(page, "</script>\n</body>"))
	assert.NotContains(t, page, "<i>t</i>")
	assert.Equal(t, "</script><b>x", traces(t, page)[0]["labels"].([]any)[0])
}

func TestRenderRejectsBadInput(t *testing.T) {
	var b bytes.Buffer
	assert.Error(t, Render(&b, Kind("pie"), Data{}, Options{}))
	assert.Error(t, Render(&b, Sunburst, Data{Labels: []string{"a"}}, Options{}))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Icicle ")
	require.NoError(t, err)
	assert.Equal(t, Icicle, k)
	_, err = ParseKind("treemap")
	assert.Error(t, err)
}
