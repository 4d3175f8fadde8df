package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiptally-dev/tiptally/internal/normalize"
)

func TestStatic_Pagination(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(
		[]normalize.RawRecord{{From: "a", To: "b", AmountText: "1.00"}},
		[]normalize.RawRecord{{From: "c", To: "d", AmountText: "2.00"}},
	)

	recs, err := s.CurrentPageRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].From)
	assert.True(t, s.HasMorePages(ctx))

	advanced, err := s.AdvancePage(ctx)
	require.NoError(t, err)
	assert.True(t, advanced)

	recs, err = s.CurrentPageRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c", recs[0].From)
	assert.False(t, s.HasMorePages(ctx))

	advanced, err = s.AdvancePage(ctx)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestStatic_Empty(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()

	recs, err := s.CurrentPageRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.False(t, s.HasMorePages(ctx))
}

func TestLoadPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.json")
	payload := `[
		[{"from": "a", "to": "b", "amount": "1.50 SC", "date": "2024/03/15 02:30 PM"}],
		[{"from": "c", "to": "d", "amount": "500 GC"}]
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	s, err := LoadPages(path)
	require.NoError(t, err)

	ctx := context.Background()
	recs, err := s.CurrentPageRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1.50 SC", recs[0].AmountText)
	assert.True(t, s.HasMorePages(ctx))
}

func TestLoadPages_Missing(t *testing.T) {
	_, err := LoadPages(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
