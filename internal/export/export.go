// Package export renders the transaction log and balance aggregate as
// CSV or JSON for use outside the tool.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tiptally-dev/tiptally/internal/model"
)

// Format selects an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// DefaultFileName returns the conventional export file name for the
// given day, e.g. tiptally_2025-06-10.csv.
func DefaultFileName(format Format, now time.Time) string {
	return fmt.Sprintf("tiptally_%s.%s", now.Format("2006-01-02"), format)
}

// Header is the CSV header for the transaction section.
const Header = "transaction_type,from,to,amount,currency,date,timestamp"

const (
	balancesHeader = "username,balance"
	dateFormat     = "2006-01-02 15:04:05"
)

// WriteCSV writes the log as CSV rows followed by a balance section.
// Balances are sorted by delta, highest first.
func WriteCSV(w io.Writer, log []model.Transaction, aggregate map[string]model.LedgerEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range log {
		row := []string{
			"tip",
			tx.From,
			tx.To,
			tx.Amount.String(),
			string(tx.Currency),
			time.UnixMilli(tx.Timestamp).Format(dateFormat),
			strconv.FormatInt(tx.Timestamp, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nbalances\n%s\n", balancesHeader); err != nil {
		return err
	}
	bw := csv.NewWriter(w)
	defer bw.Flush()
	for _, name := range sortedByDelta(aggregate) {
		row := []string{name, aggregate[name].Delta().StringFixed(2)}
		if err := bw.Write(row); err != nil {
			return fmt.Errorf("writing balance for %s: %w", name, err)
		}
	}
	return bw.Error()
}

// Snapshot is the JSON export payload.
type Snapshot struct {
	Transactions []model.Transaction          `json:"transactions"`
	Balances     map[string]model.LedgerEntry `json:"balances"`
	ExportedAt   time.Time                    `json:"exported_at"`
}

// WriteJSON writes the log and aggregate as an indented JSON snapshot.
func WriteJSON(w io.Writer, log []model.Transaction, aggregate map[string]model.LedgerEntry, now time.Time) error {
	snap := Snapshot{
		Transactions: log,
		Balances:     aggregate,
		ExportedAt:   now.UTC(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

func sortedByDelta(aggregate map[string]model.LedgerEntry) []string {
	names := make([]string, 0, len(aggregate))
	for name := range aggregate {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		di, dj := aggregate[names[i]].Delta(), aggregate[names[j]].Delta()
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return names[i] < names[j]
	})
	return names
}
