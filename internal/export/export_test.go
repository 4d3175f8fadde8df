package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiptally-dev/tiptally/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func sampleLog(t *testing.T) []model.Transaction {
	return []model.Transaction{
		{From: "alice", To: "bob", Amount: dec(t, "5.50"), Currency: model.CurrencySC, Timestamp: 1700000000000},
		{From: "bob", To: "carol", Amount: dec(t, "2"), Currency: model.CurrencySC, Timestamp: 1700000100000},
	}
}

func sampleAggregate(t *testing.T) map[string]model.LedgerEntry {
	return map[string]model.LedgerEntry{
		"bob":   {Received: dec(t, "5.50"), Sent: dec(t, "2"), LastActivity: 1700000100000},
		"carol": {Received: dec(t, "2"), Sent: decimal.Zero, LastActivity: 1700000100000},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 15, 0, 0, time.UTC)
	assert.Equal(t, "tiptally_2025-06-10.csv", DefaultFileName(FormatCSV, now))
	assert.Equal(t, "tiptally_2025-06-10.json", DefaultFileName(FormatJSON, now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLog(t), sampleAggregate(t)))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, Header, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "tip,alice,bob,5.5,SC,"))
	assert.True(t, strings.HasSuffix(lines[1], ",1700000000000"))

	// Balance section follows a blank separator, sorted by delta
	// descending: bob 3.50, carol 2.00.
	assert.Contains(t, out, "\nbalances\nusername,balance\n")
	bobIdx := strings.Index(out, "bob,3.50")
	carolIdx := strings.Index(out, "carol,2.00")
	require.Positive(t, bobIdx)
	require.Positive(t, carolIdx)
	assert.Less(t, bobIdx, carolIdx)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, nil))
	assert.Contains(t, buf.String(), Header)
	assert.Contains(t, buf.String(), "username,balance")
}

func TestWriteJSON(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 15, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleLog(t), sampleAggregate(t), now))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snap))
	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, "alice", snap.Transactions[0].From)
	require.Contains(t, snap.Balances, "bob")
	assert.True(t, snap.Balances["bob"].Delta().Equal(dec(t, "3.50")))
	assert.True(t, snap.ExportedAt.Equal(now))
}

func TestWriteJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, nil, time.Now()))
	assert.Contains(t, buf.String(), "  \"transactions\"")
}
