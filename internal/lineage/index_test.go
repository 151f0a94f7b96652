package lineage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := ParseDump(strings.NewReader(sampleDump), PolicySkip, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "lineage.db")
	require.NoError(t, WriteIndex(ctx, path, src))

	got, err := LoadIndex(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, src.Len(), got.Len())
	assert.Equal(t, path, got.Source())

	for _, id := range []string{"1", "2", "562"} {
		want, _ := src.Lookup(id)
		have, err := got.Lookup(id)
		require.NoError(t, err, id)
		assert.Equal(t, want, have, id)
	}
}

func TestIndexRewriteReplacesContents(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lineage.sqlite")

	first := NewStore(map[string]Entry{"7": {Name: "Seven"}}, "")
	require.NoError(t, WriteIndex(ctx, path, first))
	second := NewStore(map[string]Entry{"8": {Name: "Eight", Lineage: []string{"Viruses"}}}, "")
	require.NoError(t, WriteIndex(ctx, path, second))

	got, err := LoadIndex(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	_, err = got.Lookup("7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenDispatch(t *testing.T) {
	assert.True(t, IsIndexPath("taxdb/lineage.DB"))
	assert.True(t, IsIndexPath("x.sqlite3"))
	assert.False(t, IsIndexPath("taxdb/fullnamelineage.dmp"))
	assert.False(t, IsIndexPath("fullnamelineage.dmp.gz"))

	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.db"), PolicySkip, nil)
	assert.Error(t, err)
}
