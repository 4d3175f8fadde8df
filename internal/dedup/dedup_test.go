package dedup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiptally-dev/tiptally/internal/model"
)

func tx(from, to string, amount int64, ts int64) model.Transaction {
	return model.Transaction{
		From:      from,
		To:        to,
		Amount:    decimal.NewFromInt(amount),
		Currency:  model.CurrencySC,
		Timestamp: ts,
	}
}

func TestMergeBatch_HaltOnKnown(t *testing.T) {
	existing := []model.Transaction{tx("a", "b", 5, 100)}
	idx := NewIndex(existing)

	// Two new records, then a known one, then one more new. The record
	// after the match must never be appended.
	page := []model.Transaction{
		tx("c", "d", 1, 300),
		tx("e", "f", 2, 200),
		tx("a", "b", 5, 100),
		tx("g", "h", 3, 50),
	}

	fresh, seenKnown := idx.MergeBatch(page, true)
	require.True(t, seenKnown)
	require.Len(t, fresh, 2)
	assert.Equal(t, "c", fresh[0].From)
	assert.Equal(t, "e", fresh[1].From)
}

func TestMergeBatch_HaltOnRecordAddedThisRun(t *testing.T) {
	idx := NewIndex(nil)

	fresh, seenKnown := idx.MergeBatch([]model.Transaction{tx("a", "b", 1, 10)}, true)
	require.False(t, seenKnown)
	require.Len(t, fresh, 1)

	// Second page repeats a record merged earlier in this run.
	fresh, seenKnown = idx.MergeBatch([]model.Transaction{tx("a", "b", 1, 10)}, true)
	assert.True(t, seenKnown)
	assert.Empty(t, fresh)
}

func TestMergeBatch_FullModeSkipsDuplicates(t *testing.T) {
	idx := NewIndex(nil)

	page := []model.Transaction{
		tx("a", "b", 1, 10),
		tx("a", "b", 1, 10), // duplicate within run: first-seen wins
		tx("c", "d", 2, 20),
	}
	fresh, seenKnown := idx.MergeBatch(page, false)
	assert.False(t, seenKnown)
	require.Len(t, fresh, 2)

	// Duplicates across pages are skipped too, without halting.
	fresh, seenKnown = idx.MergeBatch([]model.Transaction{tx("c", "d", 2, 20), tx("e", "f", 3, 30)}, false)
	assert.False(t, seenKnown)
	require.Len(t, fresh, 1)
	assert.Equal(t, "e", fresh[0].From)
}

func TestMergeBatch_CaseInsensitiveKeys(t *testing.T) {
	idx := NewIndex([]model.Transaction{tx("Alice", "Bob", 5, 100)})

	fresh, seenKnown := idx.MergeBatch([]model.Transaction{tx("alice", "BOB", 5, 100)}, true)
	assert.True(t, seenKnown)
	assert.Empty(t, fresh)
}

func TestNewIndex_SeedsFromLog(t *testing.T) {
	log := []model.Transaction{tx("a", "b", 1, 1), tx("c", "d", 2, 2)}
	idx := NewIndex(log)
	assert.Equal(t, 2, idx.Len())
}
